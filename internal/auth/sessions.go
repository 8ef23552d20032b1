package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vyaparsetu/portal/internal/models"
)

// ErrNoSession means the token is unknown or expired.
var ErrNoSession = errors.New("no active session")

// AuthStateListener receives the identity on sign-in and nil on sign-out.
type AuthStateListener func(id *Identity)

// Sessions tracks signed-in identities by opaque token.
type Sessions struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time

	mu        sync.RWMutex
	listeners []AuthStateListener
}

func NewSessions(db *gorm.DB, ttl time.Duration) *Sessions {
	return &Sessions{db: db, ttl: ttl, now: time.Now}
}

// OnAuthStateChanged registers l and returns a function that removes it.
func (s *Sessions) OnAuthStateChanged(l AuthStateListener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
	idx := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
	}
}

func (s *Sessions) emit(id *Identity) {
	s.mu.RLock()
	ls := append([]AuthStateListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range ls {
		if l != nil {
			l(id)
		}
	}
}

// Start signs id in and returns the session token.
func (s *Sessions) Start(ctx context.Context, id Identity) (string, error) {
	sess := models.Session{
		Token:     uuid.NewString(),
		UID:       id.UID,
		Email:     id.Email,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	s.emit(&id)
	return sess.Token, nil
}

// Lookup returns the identity behind token.
func (s *Sessions) Lookup(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrNoSession
	}
	var sess models.Session
	err := s.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, s.now()).Take(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, ErrNoSession
	}
	if err != nil {
		return Identity{}, fmt.Errorf("lookup session: %w", err)
	}
	return Identity{UID: sess.UID, Email: sess.Email}, nil
}

// End signs the token out. Unknown tokens are ignored.
func (s *Sessions) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	res := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{})
	if res.Error != nil {
		return fmt.Errorf("end session: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.emit(nil)
	}
	return nil
}

// PurgeExpired deletes sessions past their expiry.
func (s *Sessions) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
