package services

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vyaparsetu/portal/internal/auth"
	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/store"
)

// AgentTile is one agent card on the admin dashboard.
type AgentTile struct {
	AgentID string
	Name    string
	Email   string
	Mobile  string
	Stats   models.Stats
}

// AdminReport is the cross-agent aggregation behind the admin views and export.
type AdminReport struct {
	Agents            []AgentTile
	Rows              []models.ReportingRow
	AgentCount        int
	RegistrationCount int
}

// BuildAdminReport flattens every agent's registrations in store order and
// annotates each row with its owner. viewer is the signed-in admin: an agent
// entry with no email but the admin's own uid borrows the admin's email.
func BuildAdminReport(agents map[string]models.Agent, viewer auth.Identity) AdminReport {
	ids := make([]string, 0, len(agents))
	for id := range agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rep := AdminReport{
		Agents: make([]AgentTile, 0, len(ids)),
		Rows:   []models.ReportingRow{},
	}
	for _, id := range ids {
		a := agents[id]
		email := a.Email
		if email == "" && viewer.UID != "" && id == viewer.UID {
			email = viewer.Email
		}
		name := AgentName(email)

		regs := InStoreOrder(a.Registrations)
		for _, r := range regs {
			rep.Rows = append(rep.Rows, models.ReportingRow{
				Registration: r,
				AgentName:    name,
				AgentEmail:   email,
				AgentUID:     id,
			})
		}
		rep.Agents = append(rep.Agents, AgentTile{
			AgentID: id,
			Name:    name,
			Email:   email,
			Mobile:  a.Mobile,
			Stats:   CountStats(regs),
		})
	}
	rep.AgentCount = len(rep.Agents)
	rep.RegistrationCount = len(rep.Rows)
	return rep
}

// AdminService is the administrator-facing aggregator and its mutations.
type AdminService struct {
	store  store.Store
	logger zerolog.Logger
}

func NewAdminService(st store.Store, logger zerolog.Logger) *AdminService {
	return &AdminService{store: st, logger: logger.With().Str("component", "admin").Logger()}
}

// Load is a one-shot read of the whole store. On failure the report is empty
// and the error is returned for the caller to log or surface.
func (s *AdminService) Load(ctx context.Context, viewer auth.Identity) (AdminReport, error) {
	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("list agents")
		return BuildAdminReport(nil, viewer), err
	}
	return BuildAdminReport(agents, viewer), nil
}

// DeleteRegistration hard-deletes any agent's registration after confirmation.
func (s *AdminService) DeleteRegistration(ctx context.Context, agentID, regID string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := s.store.DeleteRegistration(ctx, agentID, regID); err != nil {
		return err
	}
	s.logger.Info().Str("agent_id", agentID).Str("registration_id", regID).Msg("registration deleted")
	return nil
}

// SaveAgentMobile merges mobile into the agent record. Empty input is rejected.
func (s *AdminService) SaveAgentMobile(ctx context.Context, agentID, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return ValidationErrors{{Field: "mobile", Message: "Please enter a valid number!"}}
	}
	return s.store.UpdateAgentField(ctx, agentID, models.AgentPatch{Mobile: &mobile})
}

// Registration returns the raw stored registration, or nil when absent.
func (s *AdminService) Registration(ctx context.Context, agentID, regID string) (*models.Registration, error) {
	return findRegistration(ctx, s.store, agentID, regID)
}
