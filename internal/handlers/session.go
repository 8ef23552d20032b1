package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vyaparsetu/portal/internal/auth"
	"github.com/vyaparsetu/portal/internal/metrics"
)

const sessionCookieName = "vs_session"

type roleKey struct{}

func withRole(ctx context.Context, role auth.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func roleFrom(ctx context.Context) auth.Role {
	role, _ := ctx.Value(roleKey{}).(auth.Role)
	return role
}

// sessionToken reads the cookie, or a bearer token for API clients.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func (h *Handler) identify(r *http.Request) (auth.Identity, auth.Role, bool) {
	token := sessionToken(r)
	if token == "" {
		return auth.Identity{}, "", false
	}
	id, role, err := h.login.Identify(r.Context(), token)
	if err != nil {
		if !errors.Is(err, auth.ErrNoSession) {
			h.logger.Error().Err(err).Msg("session lookup")
		}
		return auth.Identity{}, "", false
	}
	return id, role, true
}

// RequireSignedIn blocks anonymous requests. Pages redirect to the login form,
// API paths get 401.
func (h *Handler) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, role, ok := h.identify(r)
		if !ok {
			h.unauthorized(w, r)
			return
		}
		ctx := withRole(auth.WithIdentity(r.Context(), id), role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin admits only allow-listed administrators. Signed-in agents are
// sent to their own dashboard.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, role, ok := h.identify(r)
		if !ok {
			h.unauthorized(w, r)
			return
		}
		if role != auth.RoleAdmin {
			if isAPI(r) {
				h.Error(w, http.StatusForbidden, "forbidden")
				return
			}
			http.Redirect(w, r, role.HomePath(), http.StatusSeeOther)
			return
		}
		ctx := withRole(auth.WithIdentity(r.Context(), id), role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		h.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func currentIdentity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

// GET /
func (h *Handler) LoginForm() http.HandlerFunc {
	view := h.page("pages/auth/login.tmpl")
	return func(w http.ResponseWriter, r *http.Request) {
		if _, role, ok := h.identify(r); ok {
			http.Redirect(w, r, role.HomePath(), http.StatusSeeOther)
			return
		}
		h.render(w, view, "auth/login.tmpl", http.StatusOK, map[string]any{
			"Title": "VyaparSetu • Login",
			"Email": "",
			"Flash": MakeFlash(r, ""),
		})
	}
}

// POST /login
func (h *Handler) LoginSubmit() http.HandlerFunc {
	view := h.page("pages/auth/login.tmpl")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		email := r.FormValue("email")
		res, err := h.login.Login(r.Context(), email, r.FormValue("password"))
		if err != nil {
			status, msg := http.StatusUnauthorized, auth.InvalidCredentialsMessage
			if errors.Is(err, auth.ErrInvalidCredentials) {
				metrics.LoginFailures.Inc()
			} else {
				h.logger.Error().Err(err).Msg("login failed")
				status, msg = http.StatusInternalServerError, "Login is unavailable right now. Please try again."
			}
			h.render(w, view, "auth/login.tmpl", status, map[string]any{
				"Title": "VyaparSetu • Login",
				"Email": email,
				"Flash": MakeFlash(r, msg),
			})
			return
		}
		metrics.Logins.WithLabelValues(string(res.Role)).Inc()

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    res.Token,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, res.Role.HomePath(), http.StatusSeeOther)
	}
}

// POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.login.Logout(r.Context(), token); err != nil {
			h.logger.Error().Err(err).Msg("logout")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/?ok=logged_out", http.StatusSeeOther)
}
