package handlers

import (
	"net/http"
	"strconv"

	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/services"
)

// serveAttachment decodes the stored data URI of field and serves its bytes
// with its own media type, the way a browser opens it in a new tab.
func serveAttachment(w http.ResponseWriter, r *http.Request, reg *models.Registration, field string) {
	if reg == nil {
		http.NotFound(w, r)
		return
	}
	var uri string
	switch field {
	case "paymentScreenshot":
		uri = reg.PaymentScreenshot
	case "otherDocuments":
		uri = reg.OtherDocuments
	default:
		http.NotFound(w, r)
		return
	}
	if uri == "" {
		http.NotFound(w, r)
		return
	}
	mediaType, data, err := services.DecodeDataURI(uri)
	if err != nil {
		http.Error(w, "attachment is corrupt", http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "sandbox")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
