package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

// GET /admin/registrations/{agentID}/{regID}/files/{field}/qr.png
//
// Encodes the absolute attachment URL so a phone can open the record.
func (h *Handler) AttachmentQR(w http.ResponseWriter, r *http.Request) {
	agentID, regID, field := chi.URLParam(r, "agentID"), chi.URLParam(r, "regID"), chi.URLParam(r, "field")
	reg, err := h.admin.Registration(r.Context(), agentID, regID)
	if err != nil || reg == nil {
		http.NotFound(w, r)
		return
	}
	if (field != "paymentScreenshot" || !reg.HasPaymentScreenshot()) &&
		(field != "otherDocuments" || !reg.HasOtherDocuments()) {
		http.NotFound(w, r)
		return
	}

	url := baseURL(r) + adminRegistrationPath(agentID, regID) + "/files/" + field

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
