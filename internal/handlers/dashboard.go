package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vyaparsetu/portal/internal/metrics"
	"github.com/vyaparsetu/portal/internal/services"
)

const streamHeartbeat = 25 * time.Second

// GET /dashboard
func (h *Handler) Dashboard() http.HandlerFunc {
	view := h.page("pages/agents/dashboard.tmpl")
	return func(w http.ResponseWriter, r *http.Request) {
		who := currentIdentity(r)
		v := h.agents.Load(r.Context(), who)
		var loadErr string
		if v.Err != nil {
			loadErr = errText["load_failed"]
		}
		h.render(w, view, "agents/dashboard.tmpl", http.StatusOK, map[string]any{
			"Title": "VyaparSetu • Dashboard",
			"View":  v,
			"Flash": MakeFlash(r, loadErr),
		})
	}
}

// GET /dashboard/stream
//
// Server-Sent Events: one "snapshot" event carrying the rendered
// registrations fragment per store delivery.
func (h *Handler) DashboardStream() http.HandlerFunc {
	view := h.page("pages/agents/dashboard.tmpl")
	return func(w http.ResponseWriter, r *http.Request) {
		who := currentIdentity(r)
		rc := http.NewResponseController(w)

		views, stop, err := h.agents.Watch(r.Context(), who)
		if err != nil {
			h.logger.Error().Err(err).Str("agent_id", who.UID).Msg("subscribe")
			http.Error(w, "live updates unavailable", http.StatusServiceUnavailable)
			return
		}
		defer stop()
		metrics.LiveSubscriptions.Inc()
		defer metrics.LiveSubscriptions.Dec()

		_ = rc.SetWriteDeadline(time.Time{})
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		_ = rc.Flush()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()
		var buf bytes.Buffer
		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				_ = rc.Flush()
			case v, ok := <-views:
				if !ok {
					_, _ = fmt.Fprint(w, "event: closed\ndata: \n\n")
					_ = rc.Flush()
					return
				}
				buf.Reset()
				if err := view.ExecuteTemplate(&buf, "agents/live", map[string]any{"View": v}); err != nil {
					h.logger.Error().Err(err).Msg("render snapshot")
					return
				}
				if err := writeEvent(w, "snapshot", buf.String()); err != nil {
					return
				}
				_ = rc.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, event, data string) error {
	var b strings.Builder
	b.WriteString("event: " + event + "\n")
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	_, err := fmt.Fprint(w, b.String())
	return err
}

// GET /dashboard/new
func (h *Handler) NewRegistrationForm() http.HandlerFunc {
	view := h.page("pages/agents/registration_form.tmpl")
	return func(w http.ResponseWriter, r *http.Request) {
		e := h.newEditor(r)
		h.render(w, view, "agents/registration_form.tmpl", http.StatusOK, map[string]any{
			"Title":    "VyaparSetu • New Registration",
			"Draft":    e.Open(),
			"Options":  formOptions,
			"MaxPhone": services.PhoneMaxLen,
			"Errors":   services.ValidationErrors(nil),
		})
	}
}

// POST /dashboard/registrations
func (h *Handler) CreateRegistration() http.HandlerFunc {
	view := h.page("pages/agents/registration_form.tmpl")
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxAttachment+(1<<20))
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		e := h.newEditor(r)
		e.Open()
		draft := draftFromForm(r)
		_ = e.Update(draft)
		payment, closePayment, err := formAttachment(r, "paymentScreenshot")
		if err != nil {
			http.Error(w, "invalid upload", http.StatusBadRequest)
			return
		}
		defer closePayment()
		other, closeOther, err := formAttachment(r, "otherDocuments")
		if err != nil {
			http.Error(w, "invalid upload", http.StatusBadRequest)
			return
		}
		defer closeOther()
		_ = e.SelectPaymentScreenshot(payment)
		_ = e.SelectOtherDocuments(other)

		_, err = e.Submit(r.Context())
		if err == nil {
			metrics.RegistrationsAppended.Inc()
			http.Redirect(w, r, "/dashboard?ok=registered", http.StatusSeeOther)
			return
		}

		status := http.StatusUnprocessableEntity
		var (
			msg   string
			verrs services.ValidationErrors
			aerr  *services.AttachmentError
		)
		switch {
		case errors.As(err, &verrs):
			msg = "Please fix the highlighted fields."
		case errors.As(err, &aerr):
			msg = attachmentMessage(aerr)
		default:
			h.logger.Error().Err(err).Str("agent_id", currentIdentity(r).UID).Msg("append registration")
			status = http.StatusServiceUnavailable
			msg = "Could not save the registration. Please try again."
		}
		h.render(w, view, "agents/registration_form.tmpl", status, map[string]any{
			"Title":    "VyaparSetu • New Registration",
			"Draft":    e.Draft(),
			"Options":  formOptions,
			"MaxPhone": services.PhoneMaxLen,
			"Errors":   verrs,
			"Flash":    MakeFlash(r, msg),
		})
	}
}

// GET /dashboard/registrations/{regID}/delete
func (h *Handler) ConfirmDeleteOwn() http.HandlerFunc {
	view := h.page("pages/shared/confirm_delete.tmpl")
	return func(w http.ResponseWriter, r *http.Request) {
		regID := chi.URLParam(r, "regID")
		reg, err := h.agents.Registration(r.Context(), currentIdentity(r).UID, regID)
		if err != nil || reg == nil {
			http.Redirect(w, r, "/dashboard?error=not_found", http.StatusSeeOther)
			return
		}
		h.render(w, view, "shared/confirm_delete.tmpl", http.StatusOK, map[string]any{
			"Title":        "VyaparSetu • Delete",
			"Registration": reg,
			"Action":       "/dashboard/registrations/" + regID + "/delete",
			"Cancel":       "/dashboard",
		})
	}
}

// POST /dashboard/registrations/{regID}/delete
func (h *Handler) DeleteOwn(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	err := h.agents.DeleteRegistration(r.Context(), currentIdentity(r), chi.URLParam(r, "regID"), confirmed(r))
	switch {
	case errors.Is(err, services.ErrNotConfirmed):
		http.Redirect(w, r, "/dashboard?error=not_confirmed", http.StatusSeeOther)
	case err != nil:
		h.logger.Error().Err(err).Msg("delete own registration")
		http.Redirect(w, r, "/dashboard?error=delete_failed", http.StatusSeeOther)
	default:
		metrics.RegistrationsDeleted.WithLabelValues("agent").Inc()
		http.Redirect(w, r, "/dashboard?ok=deleted", http.StatusSeeOther)
	}
}

// GET /dashboard/registrations/{regID}/files/{field}
func (h *Handler) OwnAttachment(w http.ResponseWriter, r *http.Request) {
	reg, err := h.agents.Registration(r.Context(), currentIdentity(r).UID, chi.URLParam(r, "regID"))
	if err != nil {
		h.logger.Error().Err(err).Msg("load attachment")
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	serveAttachment(w, r, reg, chi.URLParam(r, "field"))
}

func (h *Handler) newEditor(r *http.Request) *services.Editor {
	return services.NewEditor(h.store, currentIdentity(r).UID, services.EditorOptions{
		MaxAttachmentBytes: h.maxAttachment,
		Location:           h.loc,
	})
}

func confirmed(r *http.Request) bool {
	return r.FormValue("confirm") == "yes"
}
