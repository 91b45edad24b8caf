package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/pkg/dberrors"
	"github.com/yigit/campusconnect/internal/pkg/logger"
)

// ChangeChannel is the LISTEN/NOTIFY channel the documents trigger publishes
// collection names on.
const ChangeChannel = "document_changes"

const (
	listenRetryDelay   = 2 * time.Second
	listenReadyTimeout = 10 * time.Second
)

type queryFunc func(ctx context.Context, collection string, filters []Filter, order *OrderBy) ([]*Document, error)

// listenFunc holds one LISTEN session until it fails or ctx ends. ready is
// called once the server has acknowledged LISTEN.
type listenFunc func(ctx context.Context, ready func()) error

// PostgresStore keeps documents as JSONB rows in the documents table. Live
// subscriptions are driven by a single LISTEN connection.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger

	read       queryFunc
	listenConn listenFunc
	retryDelay time.Duration

	mu sync.Mutex
	// each subscription carries the lock its reads are serialized on
	subs         map[string]map[*Subscription]*sync.Mutex
	listenCancel context.CancelFunc
	listenReady  chan struct{}
	listenDone   chan struct{}
	closed       bool
}

// NewPostgresStore creates a store over an existing pool. The pool is owned
// by the caller.
func NewPostgresStore(pool *pgxpool.Pool, lgr zerolog.Logger) *PostgresStore {
	s := &PostgresStore{
		pool:       pool,
		logger:     logger.Component(lgr, "docstore"),
		retryDelay: listenRetryDelay,
		subs:       make(map[string]map[*Subscription]*sync.Mutex),
	}
	s.read = s.Query
	s.listenConn = s.listenOnce
	return s
}

var _ Store = (*PostgresStore)(nil)

// Get retrieves a document by ID
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	query := `
		SELECT data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2
	`

	var raw []byte
	doc := &Document{ID: id, Collection: collection}
	err := s.pool.QueryRow(ctx, query, collection, id).Scan(&raw, &doc.CreateTime, &doc.UpdateTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		return nil, fmt.Errorf("error retrieving document %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return nil, fmt.Errorf("error decoding document %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// Create inserts a new document with a generated ID
func (s *PostgresStore) Create(ctx context.Context, collection string, v any) (string, error) {
	raw, err := encode(v)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $4)
	`

	id := uuid.NewString()
	if _, err := s.pool.Exec(ctx, query, collection, id, string(raw), time.Now().UTC()); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return "", fmt.Errorf("error creating document in %s: %w", collection, ErrAlreadyExists)
		}
		return "", fmt.Errorf("error creating document in %s: %w", collection, err)
	}
	return id, nil
}

// Set creates or replaces a document under a caller-chosen ID
func (s *PostgresStore) Set(ctx context.Context, collection, id string, v any) error {
	raw, err := encode(v)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $4)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, collection, id, string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("error setting document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges the given top-level fields into a document
func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	query := `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = $4
		WHERE collection = $1 AND id = $2
	`

	cmdTag, err := s.pool.Exec(ctx, query, collection, id, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error updating document %s/%s: %w", collection, id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

// Query returns the documents of a collection matching every filter
func (s *PostgresStore) Query(ctx context.Context, collection string, filters []Filter, order *OrderBy) ([]*Document, error) {
	query, args, err := buildQuery(collection, filters, order)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var raw []byte
		doc := &Document{Collection: collection}
		if err := rows.Scan(&doc.ID, &raw, &doc.CreateTime, &doc.UpdateTime); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("error decoding document %s/%s: %w", collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

// Subscribe registers a live view. The current set is delivered before
// Subscribe returns. The change listener is acknowledged and the subscription
// registered before the first read, so any write committed after that read
// produces another snapshot.
func (s *PostgresStore) Subscribe(ctx context.Context, collection string, filters []Filter) (*Subscription, error) {
	if err := s.awaitListener(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	fetchMu := &sync.Mutex{}
	var sub *Subscription
	sub = newSubscription(ctx, collection, filters, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[collection], sub)
		if len(s.subs[collection]) == 0 {
			delete(s.subs, collection)
		}
	})
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[*Subscription]*sync.Mutex)
	}
	s.subs[collection][sub] = fetchMu
	s.mu.Unlock()

	if err := s.fetch(ctx, sub, fetchMu); err != nil {
		sub.Cancel()
		return nil, err
	}
	return sub, nil
}

// fetch reads the subscription's current set and pushes it. Reads of one
// subscription never overlap, so the last read to start is the last pushed.
func (s *PostgresStore) fetch(ctx context.Context, sub *Subscription, fetchMu *sync.Mutex) error {
	fetchMu.Lock()
	defer fetchMu.Unlock()

	docs, err := s.read(ctx, sub.collection, sub.filters, nil)
	if err != nil {
		return err
	}
	sub.push(docs)
	return nil
}

// Close stops the listener and cancels all subscriptions.
func (s *PostgresStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel, done := s.listenCancel, s.listenDone
	var subs []*Subscription
	for _, set := range s.subs {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	for _, sub := range subs {
		sub.Cancel()
	}
	return nil
}

// awaitListener starts the change listener on first use and waits until its
// LISTEN has been acknowledged.
func (s *PostgresStore) awaitListener(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.listenCancel == nil {
		listenCtx, cancel := context.WithCancel(context.Background())
		s.listenCancel = cancel
		s.listenReady = make(chan struct{})
		s.listenDone = make(chan struct{})
		go s.listen(listenCtx, s.listenReady, s.listenDone)
	}
	ready, done := s.listenReady, s.listenDone
	s.mu.Unlock()

	timer := time.NewTimer(listenReadyTimeout)
	defer timer.Stop()

	select {
	case <-ready:
		return nil
	case <-done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out waiting to listen on %s", ChangeChannel)
	}
}

// listen keeps a LISTEN session open, reconnecting after failures. Changes
// sent while reconnecting are never delivered, so every session after the
// first starts by refreshing all subscriptions.
func (s *PostgresStore) listen(ctx context.Context, ready, done chan struct{}) {
	defer close(done)

	first := true
	onReady := func() {
		if first {
			first = false
			close(ready)
			return
		}
		s.refreshAll(ctx)
	}

	for ctx.Err() == nil {
		if err := s.listenConn(ctx, onReady); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("Document change listener failed, reconnecting")
			select {
			case <-ctx.Done():
			case <-time.After(s.retryDelay):
			}
		}
	}
}

func (s *PostgresStore) listenOnce(ctx context.Context, ready func()) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ChangeChannel, err)
	}
	s.logger.Debug().Str("channel", ChangeChannel).Msg("Listening for document changes")
	ready()

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		s.refresh(ctx, notification.Payload)
	}
}

func (s *PostgresStore) refresh(ctx context.Context, collection string) {
	s.mu.Lock()
	subs := make([]*Subscription, 0, len(s.subs[collection]))
	locks := make([]*sync.Mutex, 0, len(s.subs[collection]))
	for sub, fetchMu := range s.subs[collection] {
		subs = append(subs, sub)
		locks = append(locks, fetchMu)
	}
	s.mu.Unlock()

	for i, sub := range subs {
		if err := s.fetch(ctx, sub, locks[i]); err != nil {
			s.logger.Error().Err(err).Str("collection", collection).Msg("Failed to refresh subscription")
		}
	}
}

func (s *PostgresStore) refreshAll(ctx context.Context) {
	s.mu.Lock()
	collections := make([]string, 0, len(s.subs))
	for collection := range s.subs {
		collections = append(collections, collection)
	}
	s.mu.Unlock()

	for _, collection := range collections {
		s.refresh(ctx, collection)
	}
}

func encode(v any) ([]byte, error) {
	fields, err := toFields(v)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return raw, nil
}

func buildQuery(collection string, filters []Filter, order *OrderBy) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1")
	args := []any{collection}

	for _, f := range filters {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode filter on %s: %w", f.Field, err)
		}
		args = append(args, f.Field, string(raw))
		fmt.Fprintf(&sb, " AND data -> $%d = $%d::jsonb", len(args)-1, len(args))
	}

	direction := ""
	if order != nil && order.Desc {
		direction = " DESC"
	}
	switch {
	case order == nil || order.Field == CreateTimeField:
		sb.WriteString(" ORDER BY created_at" + direction)
	default:
		args = append(args, order.Field)
		fmt.Fprintf(&sb, " ORDER BY data -> $%d%s, created_at%s", len(args), direction, direction)
	}
	sb.WriteString(", id")

	return sb.String(), args, nil
}
