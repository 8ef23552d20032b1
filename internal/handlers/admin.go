package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GET /admin
func (h *Handler) AdminDashboard() http.HandlerFunc {
	view := h.page("pages/admin/dashboard.tmpl")
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := h.admin.Load(r.Context(), currentIdentity(r))
		var loadErr string
		if err != nil {
			loadErr = errText["load_failed"]
		}
		h.render(w, view, "admin/dashboard.tmpl", http.StatusOK, map[string]any{
			"Title":  "VyaparSetu • Admin Dashboard",
			"Report": rep,
			"Flash":  MakeFlash(r, loadErr),
		})
	}
}

// GET /admin/registrations/{agentID}/{regID}/delete
func (h *Handler) AdminConfirmDelete() http.HandlerFunc {
	view := h.page("pages/shared/confirm_delete.tmpl")
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, regID := chi.URLParam(r, "agentID"), chi.URLParam(r, "regID")
		reg, err := h.admin.Registration(r.Context(), agentID, regID)
		if err != nil || reg == nil {
			http.Redirect(w, r, "/admin?error=not_found", http.StatusSeeOther)
			return
		}
		h.render(w, view, "shared/confirm_delete.tmpl", http.StatusOK, map[string]any{
			"Title":        "VyaparSetu • Delete",
			"Registration": reg,
			"Action":       adminRegistrationPath(agentID, regID) + "/delete",
			"Cancel":       "/admin",
		})
	}
}

// GET /admin/registrations/{agentID}/{regID}/files/{field}
func (h *Handler) AdminAttachment(w http.ResponseWriter, r *http.Request) {
	reg, err := h.admin.Registration(r.Context(), chi.URLParam(r, "agentID"), chi.URLParam(r, "regID"))
	if err != nil {
		h.logger.Error().Err(err).Msg("load attachment")
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	serveAttachment(w, r, reg, chi.URLParam(r, "field"))
}

func adminRegistrationPath(agentID, regID string) string {
	return "/admin/registrations/" + agentID + "/" + regID
}
