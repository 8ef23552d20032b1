package handlers

import (
	"net/http"

	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/services"
)

// MeResponse is the agent's own dashboard data.
type MeResponse struct {
	UID           string                `json:"uid"`
	Email         string                `json:"email"`
	Name          string                `json:"name"`
	Stats         models.Stats          `json:"stats"`
	Registrations []models.Registration `json:"registrations"`
}

// AgentSummary is one admin tile.
type AgentSummary struct {
	UID    string       `json:"uid"`
	Name   string       `json:"name"`
	Email  string       `json:"email,omitempty"`
	Mobile string       `json:"mobile,omitempty"`
	Stats  models.Stats `json:"stats"`
}

// AdminReportResponse is the cross-agent report.
type AdminReportResponse struct {
	AgentCount        int                   `json:"agentCount"`
	RegistrationCount int                   `json:"registrationCount"`
	Agents            []AgentSummary        `json:"agents"`
	Registrations     []models.ReportingRow `json:"registrations"`
}

// GET /api/v1/me
func (h *Handler) APIMe(w http.ResponseWriter, r *http.Request) {
	who := currentIdentity(r)
	v := h.agents.Load(r.Context(), who)
	if v.Err != nil {
		h.Error(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	regs := v.Registrations
	if regs == nil {
		regs = []models.Registration{}
	}
	h.JSON(w, http.StatusOK, MeResponse{
		UID:           who.UID,
		Email:         who.Email,
		Name:          v.Name,
		Stats:         v.Stats,
		Registrations: regs,
	})
}

// GET /api/v1/admin/report
func (h *Handler) APIAdminReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.admin.Load(r.Context(), currentIdentity(r))
	if err != nil {
		h.Error(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	h.JSON(w, http.StatusOK, toAdminResponse(rep))
}

func toAdminResponse(rep services.AdminReport) AdminReportResponse {
	out := AdminReportResponse{
		AgentCount:        rep.AgentCount,
		RegistrationCount: rep.RegistrationCount,
		Agents:            make([]AgentSummary, 0, len(rep.Agents)),
		Registrations:     rep.Rows,
	}
	for _, a := range rep.Agents {
		out.Agents = append(out.Agents, AgentSummary{
			UID: a.AgentID, Name: a.Name, Email: a.Email, Mobile: a.Mobile, Stats: a.Stats,
		})
	}
	return out
}
