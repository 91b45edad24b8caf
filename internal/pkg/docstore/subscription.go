package docstore

import (
	"context"
	"sync"
)

// Subscription is a live view over a filtered collection. The owner must call
// Cancel when it no longer needs updates; a subscription that is never
// cancelled keeps receiving snapshots for the lifetime of the store.
type Subscription struct {
	collection string
	filters    []Filter

	mu      sync.Mutex
	ch      chan []*Document
	done    chan struct{}
	closed  bool
	release func()
	stop    func() bool
}

func newSubscription(ctx context.Context, collection string, filters []Filter, release func()) *Subscription {
	s := &Subscription{
		collection: collection,
		filters:    filters,
		ch:         make(chan []*Document, 1),
		done:       make(chan struct{}),
		release:    release,
	}
	stop := context.AfterFunc(ctx, s.Cancel)
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
	return s
}

// Snapshots yields the current matching documents after every change. Only
// the newest snapshot is kept for a slow reader. The channel is closed when
// the subscription is cancelled.
func (s *Subscription) Snapshots() <-chan []*Document {
	return s.ch
}

// Done is closed once the subscription has been cancelled.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Cancel stops the subscription. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	close(s.done)
	stop := s.stop
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	if s.release != nil {
		s.release()
	}
}

func (s *Subscription) push(docs []*Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- docs:
	default:
		// Replace the unread snapshot with the newer one.
		select {
		case <-s.ch:
		default:
		}
		s.ch <- docs
	}
}
