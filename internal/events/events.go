// Package events carries "agent changed" notifications from store writers to
// live subscribers. A notification carries no payload: subscribers re-read.
package events

import (
	"context"
	"sync"
)

// Broker publishes and fans out per-agent change notifications.
type Broker interface {
	Publish(ctx context.Context, agentID string) error
	// Subscribe returns a channel that receives at least one value after every
	// Publish for agentID; bursts may be coalesced. stop releases the subscription.
	Subscribe(ctx context.Context, agentID string) (ch <-chan struct{}, stop func(), err error)
	Close() error
}

// LocalBroker fans out notifications inside one process.
type LocalBroker struct {
	mu     sync.Mutex
	subs   map[string]map[chan struct{}]struct{}
	closed bool
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[chan struct{}]struct{})}
}

func (b *LocalBroker) Publish(_ context.Context, agentID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[agentID] {
		notify(ch)
	}
	return nil
}

func (b *LocalBroker) Subscribe(_ context.Context, agentID string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}, nil
	}
	if b.subs[agentID] == nil {
		b.subs[agentID] = make(map[chan struct{}]struct{})
	}
	b.subs[agentID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[agentID][ch]; !ok {
				return
			}
			delete(b.subs[agentID], ch)
			if len(b.subs[agentID]) == 0 {
				delete(b.subs, agentID)
			}
			close(ch)
		})
	}
	return ch, stop, nil
}

// Close closes every open subscription channel.
func (b *LocalBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, set := range b.subs {
		for ch := range set {
			close(ch)
		}
	}
	b.subs = make(map[string]map[chan struct{}]struct{})
	b.closed = true
	return nil
}

// notify does a non-blocking send; a pending value already means "changed".
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
