// Package auth is the identity-provider adapter: email/password accounts,
// sessions that carry the authenticated identity, and role resolution.
package auth

import (
	"context"
	"errors"
	"strings"
)

// Identity is the authenticated user as the rest of the system sees it.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// ErrInvalidCredentials is the only sign-in failure callers see.
var ErrInvalidCredentials = errors.New("invalid credentials")

// InvalidCredentialsMessage is the user-facing text for ErrInvalidCredentials.
const InvalidCredentialsMessage = "Invalid credentials. Please try again."

// Provider authenticates email/password pairs.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// Roles is the static administrator allow-list.
type Roles struct {
	admins map[string]struct{}
}

func NewRoles(adminEmails []string) Roles {
	r := Roles{admins: make(map[string]struct{}, len(adminEmails))}
	for _, e := range adminEmails {
		if e = strings.TrimSpace(e); e != "" {
			r.admins[e] = struct{}{}
		}
	}
	return r
}

// Resolve compares the authenticated email against the allow-list exactly.
func (r Roles) Resolve(email string) Role {
	if _, ok := r.admins[email]; ok {
		return RoleAdmin
	}
	return RoleAgent
}

// HomePath is where a role lands after login.
func (r Role) HomePath() string {
	if r == RoleAdmin {
		return "/admin"
	}
	return "/dashboard"
}

type ctxKey struct{}

// WithIdentity stores id in ctx for downstream handlers.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity placed by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
