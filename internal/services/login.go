package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vyaparsetu/portal/internal/auth"
	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/store"
)

// LoginResult is a successful sign-in.
type LoginResult struct {
	Identity auth.Identity
	Role     auth.Role
	Token    string
}

// LoginService signs users in, resolves their role and records agent logins.
type LoginService struct {
	provider auth.Provider
	sessions *auth.Sessions
	roles    auth.Roles
	store    store.Store
	now      func() time.Time
	logger   zerolog.Logger
}

func NewLoginService(p auth.Provider, sessions *auth.Sessions, roles auth.Roles, st store.Store, logger zerolog.Logger) *LoginService {
	return &LoginService{
		provider: p,
		sessions: sessions,
		roles:    roles,
		store:    st,
		now:      time.Now,
		logger:   logger.With().Str("component", "login").Logger(),
	}
}

// Login authenticates and starts a session. Any credential problem is
// auth.ErrInvalidCredentials. A failed agent profile write is logged and does
// not block the login.
func (s *LoginService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	id, err := s.provider.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return LoginResult{}, err
	}
	role := s.roles.Resolve(id.Email)
	if role == auth.RoleAgent {
		if err := s.RecordLogin(ctx, id); err != nil {
			s.logger.Error().Err(err).Str("agent_id", id.UID).Msg("record login")
		}
	}
	token, err := s.sessions.Start(ctx, id)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Identity: id, Role: role, Token: token}, nil
}

// RecordLogin upserts the agent profile with email and lastLogin, passing
// the existing mobile and registrations through the full-record write.
func (s *LoginService) RecordLogin(ctx context.Context, id auth.Identity) error {
	existing, err := s.store.FetchAgent(ctx, id.UID)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	profile := models.Agent{ID: id.UID, Email: id.Email, LastLogin: &now}
	if existing != nil {
		profile.Mobile = existing.Mobile
		profile.Registrations = existing.Registrations
	}
	return s.store.UpsertAgentProfile(ctx, id.UID, profile)
}

// Logout ends the session behind token.
func (s *LoginService) Logout(ctx context.Context, token string) error {
	return s.sessions.End(ctx, token)
}

// Identify resolves a session token into the identity and its role.
func (s *LoginService) Identify(ctx context.Context, token string) (auth.Identity, auth.Role, error) {
	id, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return auth.Identity{}, "", err
	}
	return id, s.roles.Resolve(id.Email), nil
}
