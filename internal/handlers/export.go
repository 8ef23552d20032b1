package handlers

import (
	"bytes"
	"net/http"

	"github.com/vyaparsetu/portal/internal/metrics"
	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/report"
)

var exportTypes = map[string]string{
	"csv":  "text/csv; charset=utf-8",
	"html": "text/html; charset=utf-8",
	"pdf":  "application/pdf",
}

func attachmentLink(row models.ReportingRow, field string) string {
	return adminRegistrationPath(row.AgentUID, row.ID) + "/files/" + field
}

// baseURL is the scheme and host the request was addressed to. Downloaded
// reports and QR codes are opened outside the page, so their links are absolute.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// GET /admin/export.pdf, /admin/export.csv and /admin/export.html
func (h *Handler) AdminExport(format string) http.HandlerFunc {
	contentType, ok := exportTypes[format]
	if !ok {
		panic("handlers: unknown export format " + format)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := h.admin.Load(r.Context(), currentIdentity(r))
		if err != nil {
			http.Error(w, "could not load registrations", http.StatusServiceUnavailable)
			return
		}
		base := baseURL(r)
		doc := report.Build(rep.Rows, func(row models.ReportingRow, field string) string {
			return base + attachmentLink(row, field)
		})

		var buf bytes.Buffer
		switch format {
		case "pdf":
			err = report.WritePDF(&buf, doc)
		case "html":
			err = report.WriteHTML(&buf, doc)
		default:
			err = report.WriteCSV(&buf, doc)
		}
		if err != nil {
			h.logger.Error().Err(err).Str("format", format).Msg("export failed")
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		metrics.Exports.WithLabelValues(format).Inc()

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+report.Filename(format))
		_, _ = w.Write(buf.Bytes())
	}
}
