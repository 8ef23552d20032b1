package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/services"
)

var formOptions = map[string][]string{
	"GST":      {models.GSTNo, models.GSTYes},
	"Payment":  {models.PaymentPending, models.PaymentPaidOffline, models.PaymentPaidOnline},
	"Document": {models.DocumentPending, models.DocumentCollected},
}

func draftFromForm(r *http.Request) services.Draft {
	return services.Draft{
		CustomerName:         strings.TrimSpace(r.FormValue("customerName")),
		ShopName:             strings.TrimSpace(r.FormValue("shopName")),
		Phone:                strings.TrimSpace(r.FormValue("phone")),
		Email:                strings.TrimSpace(r.FormValue("email")),
		GST:                  r.FormValue("gst"),
		RegistrationDateTime: strings.TrimSpace(r.FormValue("registrationDateTime")),
		PaymentStatus:        r.FormValue("paymentStatus"),
		DocumentStatus:       r.FormValue("documentStatus"),
	}
}

// formAttachment returns the uploaded file for field, or nil when none was chosen.
func formAttachment(r *http.Request, field string) (*services.Attachment, func(), error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return &services.Attachment{
		Filename:    hdr.Filename,
		ContentType: contentType(hdr),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func contentType(hdr *multipart.FileHeader) string {
	return hdr.Header.Get("Content-Type")
}

func attachmentMessage(err *services.AttachmentError) string {
	label := "Payment screenshot"
	if err.Field == "otherDocuments" {
		label = "Other documents"
	}
	if errors.Is(err, services.ErrAttachmentTooLarge) {
		return label + " is too large. Choose a smaller file or remove it."
	}
	if errors.Is(err, services.ErrAttachmentReselect) {
		return label + " must be chosen again or removed."
	}
	return label + " could not be read. Choose the file again or remove it."
}
