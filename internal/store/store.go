package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/vyaparsetu/portal/internal/models"
)

// Store is the Registration Store access layer. Implementations never retry;
// every backend failure is returned as an *IOError.
type Store interface {
	// FetchAgent reads the agent sub-tree. A missing agent is (nil, nil).
	FetchAgent(ctx context.Context, agentID string) (*models.Agent, error)

	// UpsertAgentProfile replaces the whole agent record. Fields left empty are
	// cleared and registrations not present in agent.Registrations are removed.
	UpsertAgentProfile(ctx context.Context, agentID string, agent models.Agent) error

	// AppendRegistration stores reg under a fresh generator-assigned id and returns it.
	AppendRegistration(ctx context.Context, agentID string, reg models.Registration) (string, error)

	// DeleteRegistration removes exactly one entry. Missing ids are a no-op.
	DeleteRegistration(ctx context.Context, agentID, regID string) error

	// UpdateAgentField merges the named fields and leaves all others untouched.
	UpdateAgentField(ctx context.Context, agentID string, patch models.AgentPatch) error

	// ListAgents reads the whole store root.
	ListAgents(ctx context.Context) (map[string]models.Agent, error)

	// SubscribeRegistrations delivers the agent's full registrations snapshot
	// now and again after every change until the subscription is closed.
	SubscribeRegistrations(ctx context.Context, agentID string) (*Subscription, error)

	Ping(ctx context.Context) error
	Close() error
}

// ErrIO matches every store I/O failure via errors.Is.
var ErrIO = errors.New("store i/o failure")

// IOError is a retryable network, permission or database failure.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// Temporary marks the failure as safe to retry by the caller.
func (e *IOError) Temporary() bool { return true }

func ioErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var already *IOError
	if errors.As(err, &already) {
		return err
	}
	return &IOError{Op: op, Err: err}
}

// ErrEmptyID is returned when an agent or registration id is blank.
var ErrEmptyID = errors.New("store: empty id")
