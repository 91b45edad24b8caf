package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. Writes fan out to subscribers
// synchronously; documents are replaced on write, never mutated in place.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*Document
	subs        map[string]map[*Subscription]struct{}
	closed      bool

	now   func() time.Time
	newID func() string
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source used for create/update timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithIDGenerator overrides document ID generation.
func WithIDGenerator(newID func() string) MemoryOption {
	return func(s *MemoryStore) { s.newID = newID }
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		collections: make(map[string]map[string]*Document),
		subs:        make(map[string]map[*Subscription]struct{}),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

// Get returns a copy of the stored document.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return cloneDocument(doc), nil
}

// Create stores v under a new ID.
func (s *MemoryStore) Create(ctx context.Context, collection string, v any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fields, err := toFields(v)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	id := s.newID()
	now := s.now()
	s.put(&Document{ID: id, Collection: collection, Data: fields, CreateTime: now, UpdateTime: now})
	s.notifyLocked(collection)
	return id, nil
}

// Set creates or replaces the document stored under id.
func (s *MemoryStore) Set(ctx context.Context, collection, id string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields, err := toFields(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	now := s.now()
	created := now
	if existing, ok := s.collections[collection][id]; ok {
		created = existing.CreateTime
	}
	s.put(&Document{ID: id, Collection: collection, Data: fields, CreateTime: created, UpdateTime: now})
	s.notifyLocked(collection)
	return nil
}

// Update merges fields into the stored document.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	normalized, err := normalizeMap(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	existing, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	updated := cloneDocument(existing)
	for k, v := range normalized {
		updated.Data[k] = v
	}
	updated.UpdateTime = s.now()
	s.put(updated)
	s.notifyLocked(collection)
	return nil
}

// Query returns matching documents, ordered by creation time unless order is set.
func (s *MemoryStore) Query(ctx context.Context, collection string, filters []Filter, order *OrderBy) ([]*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.queryLocked(collection, filters, order), nil
}

// Subscribe registers a live view and immediately delivers the current set.
func (s *MemoryStore) Subscribe(ctx context.Context, collection string, filters []Filter) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	var sub *Subscription
	sub = newSubscription(ctx, collection, filters, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.unsubscribeLocked(collection, sub)
	})
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[*Subscription]struct{})
	}
	s.subs[collection][sub] = struct{}{}
	sub.push(s.queryLocked(collection, filters, nil))
	return sub, nil
}

// SubscriberCount reports the live subscriptions on a collection.
func (s *MemoryStore) SubscriberCount(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs[collection])
}

// Close cancels every subscription and rejects further calls.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	var subs []*Subscription
	for _, set := range s.subs {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	return nil
}

func (s *MemoryStore) unsubscribeLocked(collection string, sub *Subscription) {
	delete(s.subs[collection], sub)
	if len(s.subs[collection]) == 0 {
		delete(s.subs, collection)
	}
}

func (s *MemoryStore) put(doc *Document) {
	if s.collections[doc.Collection] == nil {
		s.collections[doc.Collection] = make(map[string]*Document)
	}
	s.collections[doc.Collection][doc.ID] = doc
}

func (s *MemoryStore) notifyLocked(collection string) {
	for sub := range s.subs[collection] {
		sub.push(s.queryLocked(collection, sub.filters, nil))
	}
}

func (s *MemoryStore) queryLocked(collection string, filters []Filter, order *OrderBy) []*Document {
	docs := make([]*Document, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		if matches(doc.Data, filters) {
			docs = append(docs, cloneDocument(doc))
		}
	}
	sortDocuments(docs, order)
	return docs
}

func sortDocuments(docs []*Document, order *OrderBy) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if order != nil && order.Field != CreateTimeField {
			if c := compareValues(a.Data[order.Field], b.Data[order.Field]); c != 0 {
				if order.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		if !a.CreateTime.Equal(b.CreateTime) {
			if order != nil && order.Desc {
				return a.CreateTime.After(b.CreateTime)
			}
			return a.CreateTime.Before(b.CreateTime)
		}
		return a.ID < b.ID
	})
}

// compareValues orders missing values last, then numbers, strings and bools.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	}
	return 0
}
