package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vyaparsetu/portal/internal/metrics"
	"github.com/vyaparsetu/portal/internal/services"
)

// POST /admin/registrations/{agentID}/{regID}/delete
func (h *Handler) AdminRegDelete(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	agentID, regID := chi.URLParam(r, "agentID"), chi.URLParam(r, "regID")
	err := h.admin.DeleteRegistration(r.Context(), agentID, regID, confirmed(r))
	switch {
	case errors.Is(err, services.ErrNotConfirmed):
		http.Redirect(w, r, "/admin?error=not_confirmed", http.StatusSeeOther)
	case err != nil:
		h.logger.Error().Err(err).Str("agent_id", agentID).Msg("admin delete")
		http.Redirect(w, r, "/admin?error=delete_failed", http.StatusSeeOther)
	default:
		metrics.RegistrationsDeleted.WithLabelValues("admin").Inc()
		http.Redirect(w, r, "/admin?ok=deleted", http.StatusSeeOther)
	}
}

// POST /admin/agents/{agentID}/mobile
func (h *Handler) AdminSaveMobile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	agentID := chi.URLParam(r, "agentID")
	err := h.admin.SaveAgentMobile(r.Context(), agentID, r.FormValue("mobile"))
	var verrs services.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		http.Redirect(w, r, "/admin?error=mobile_empty", http.StatusSeeOther)
	case err != nil:
		h.logger.Error().Err(err).Str("agent_id", agentID).Msg("save agent mobile")
		http.Redirect(w, r, "/admin?error=mobile_failed", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/admin?ok=mobile_saved", http.StatusSeeOther)
	}
}
