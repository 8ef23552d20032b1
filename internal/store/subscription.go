package store

import (
	"context"
	"sync"

	"github.com/vyaparsetu/portal/internal/models"
)

// Snapshot is one full delivery of an agent's registrations. Err is set when
// the backend failed; the subscription ends after an error delivery.
type Snapshot struct {
	Registrations map[string]models.Registration
	Err           error
}

// Subscription is a cancellable stream of snapshots. The newest snapshot
// replaces an undelivered older one, so slow consumers only see the latest state.
type Subscription struct {
	c      chan Snapshot
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func newSubscription(parent context.Context) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	return &Subscription{c: make(chan Snapshot, 1), ctx: ctx, cancel: cancel}
}

// C returns the delivery channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Snapshot { return s.c }

// Close unsubscribes. No deliveries happen after the channel drains.
func (s *Subscription) Close() { s.cancel() }

// Done is closed once Close is called or the parent context ends.
func (s *Subscription) Done() <-chan struct{} { return s.ctx.Done() }

// send delivers snap, displacing an undelivered one. False means the subscription is over.
func (s *Subscription) send(snap Snapshot) bool {
	for {
		select {
		case <-s.ctx.Done():
			return false
		default:
		}
		select {
		case s.c <- snap:
			return true
		default:
			select {
			case <-s.c:
			default:
			}
		}
	}
}

// finish closes the delivery channel; only the producer goroutine calls it.
func (s *Subscription) finish() {
	s.once.Do(func() {
		s.cancel()
		close(s.c)
	})
}
