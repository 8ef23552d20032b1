package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vyaparsetu/portal/internal/models"
)

// AccountCreatedHook runs after a new account is stored (the provisioning trigger).
type AccountCreatedHook func(ctx context.Context, id Identity) error

// ErrAccountExists is returned when the email already has an account.
var ErrAccountExists = errors.New("account already exists")

// LocalProvider keeps bcrypt-hashed accounts in the gorm database.
type LocalProvider struct {
	db   *gorm.DB
	cost int

	mu    sync.RWMutex
	hooks []AccountCreatedHook
}

func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db, cost: bcrypt.DefaultCost}
}

// OnAccountCreated registers a hook fired by CreateAccount.
func (p *LocalProvider) OnAccountCreated(h AccountCreatedHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, h)
}

// CreateAccount stores a new account and fires the account-created hooks.
// A hook failure is returned but the account stays created.
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Identity{}, errors.New("email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	acc := models.Account{UID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	var count int64
	if err := p.db.WithContext(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return Identity{}, fmt.Errorf("lookup account: %w", err)
	}
	if count > 0 {
		return Identity{}, ErrAccountExists
	}
	if err := p.db.WithContext(ctx).Create(&acc).Error; err != nil {
		return Identity{}, fmt.Errorf("create account: %w", err)
	}

	id := Identity{UID: acc.UID, Email: acc.Email}
	p.mu.RLock()
	hooks := append([]AccountCreatedHook(nil), p.hooks...)
	p.mu.RUnlock()
	for _, h := range hooks {
		if err := h(ctx, id); err != nil {
			return id, fmt.Errorf("account created, hook failed: %w", err)
		}
	}
	return id, nil
}

// SignIn checks the password. Unknown emails and wrong passwords look the same.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	var acc models.Account
	err := p.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, fmt.Errorf("lookup account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{UID: acc.UID, Email: acc.Email}, nil
}

// normalizeEmail is the stored form of an account email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
