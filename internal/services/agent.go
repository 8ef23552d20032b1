package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vyaparsetu/portal/internal/auth"
	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/store"
)

// AgentView is what the agent dashboard renders.
type AgentView struct {
	AgentID       string
	Name          string
	Registrations []models.Registration // normalized, newest first
	Stats         models.Stats
	Err           error
}

// SummarizeAgent normalizes raw, orders it newest first and counts totals.
func SummarizeAgent(raw map[string]models.Registration, loc *time.Location) ([]models.Registration, models.Stats) {
	regs := InStoreOrder(raw)
	for i := range regs {
		regs[i] = regs[i].Normalized()
	}
	SortNewestFirst(regs, loc)
	return regs, CountStats(regs)
}

// AgentService is the agent-facing aggregator over one agent's sub-tree.
type AgentService struct {
	store  store.Store
	loc    *time.Location
	logger zerolog.Logger
}

func NewAgentService(st store.Store, loc *time.Location, logger zerolog.Logger) *AgentService {
	if loc == nil {
		loc = time.UTC
	}
	return &AgentService{store: st, loc: loc, logger: logger.With().Str("component", "agent").Logger()}
}

// Location is the zone registration date-times are read in.
func (s *AgentService) Location() *time.Location { return s.loc }

// Load is a one-shot read. A store failure yields the empty view with Err set.
func (s *AgentService) Load(ctx context.Context, who auth.Identity) AgentView {
	view := AgentView{AgentID: who.UID, Name: WelcomeName(who.Email)}
	a, err := s.store.FetchAgent(ctx, who.UID)
	if err != nil {
		s.logger.Error().Err(err).Str("agent_id", who.UID).Msg("load registrations")
		view.Err = err
		return view
	}
	if a != nil {
		view.Registrations, view.Stats = SummarizeAgent(a.Registrations, s.loc)
	}
	return view
}

// Watch subscribes to the agent's registrations and re-aggregates on every
// delivery. The returned channel closes when ctx ends, stop is called or the
// store reports an error (delivered once as AgentView.Err).
func (s *AgentService) Watch(ctx context.Context, who auth.Identity) (<-chan AgentView, func(), error) {
	sub, err := s.store.SubscribeRegistrations(ctx, who.UID)
	if err != nil {
		return nil, nil, err
	}
	out := make(chan AgentView)
	go func() {
		defer close(out)
		defer sub.Close()
		for snap := range sub.C() {
			view := AgentView{AgentID: who.UID, Name: WelcomeName(who.Email), Err: snap.Err}
			if snap.Err != nil {
				s.logger.Warn().Err(snap.Err).Str("agent_id", who.UID).Msg("live subscription failed")
			} else {
				view.Registrations, view.Stats = SummarizeAgent(snap.Registrations, s.loc)
			}
			select {
			case out <- view:
			case <-sub.Done():
				return
			}
		}
	}()
	return out, sub.Close, nil
}

// DeleteRegistration removes one of the agent's own registrations after confirmation.
func (s *AgentService) DeleteRegistration(ctx context.Context, who auth.Identity, regID string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	return s.store.DeleteRegistration(ctx, who.UID, regID)
}

// Registration returns one of the agent's registrations, raw, or nil.
func (s *AgentService) Registration(ctx context.Context, agentID, regID string) (*models.Registration, error) {
	return findRegistration(ctx, s.store, agentID, regID)
}
