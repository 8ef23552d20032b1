package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vyaparsetu/portal/internal/db"
	"github.com/vyaparsetu/portal/internal/events"
	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/store"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return gdb
}

func openTestStore(t *testing.T) *store.GormStore {
	t.Helper()
	s := store.NewGormStore(openTestDB(t), events.NewLocalBroker(), zerolog.Nop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var errBackend = &store.IOError{Op: "test", Err: errors.New("backend unavailable")}

// failingStore wraps a real store and fails the operations switched on.
type failingStore struct {
	store.Store
	failAppend bool
	failList   bool
	appends    int
}

func (f *failingStore) AppendRegistration(ctx context.Context, agentID string, reg models.Registration) (string, error) {
	f.appends++
	if f.failAppend {
		return "", errBackend
	}
	return f.Store.AppendRegistration(ctx, agentID, reg)
}

func (f *failingStore) ListAgents(ctx context.Context) (map[string]models.Agent, error) {
	if f.failList {
		return nil, errBackend
	}
	return f.Store.ListAgents(ctx)
}

func reg(id, status, when string) models.Registration {
	return models.Registration{
		ID:                   id,
		CustomerName:         "Customer " + id,
		ShopName:             "Shop " + id,
		Phone:                "9876543210",
		Email:                "c" + id + "@example.com",
		PaymentStatus:        status,
		RegistrationDateTime: when,
	}
}
