package services

import (
	"context"
	"errors"

	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/store"
)

// ProvisionAgent writes the initial agent profile {email} for a new account.
// An existing agent is left alone, except that a missing email is filled in
// through a merge so registrations are never touched.
func ProvisionAgent(ctx context.Context, st store.Store, uid, email string) error {
	if uid == "" {
		return errors.New("provision: empty uid")
	}
	existing, err := st.FetchAgent(ctx, uid)
	if err != nil {
		return err
	}
	if existing == nil {
		return st.UpsertAgentProfile(ctx, uid, models.Agent{ID: uid, Email: email})
	}
	if existing.Email == "" && email != "" {
		return st.UpdateAgentField(ctx, uid, models.AgentPatch{Email: &email})
	}
	return nil
}
