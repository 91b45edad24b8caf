package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/docstore"
)

// SessionRepository stores the sessions backing issued tokens
type SessionRepository struct {
	store docstore.Store
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(store docstore.Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// Create stores a session record and sets its ID
func (r *SessionRepository) Create(ctx context.Context, rec *models.SessionRecord) error {
	fields := *rec
	fields.ID = ""
	id, err := r.store.Create(ctx, models.CollectionSessions, fields)
	if err != nil {
		return fmt.Errorf("error creating session: %w", err)
	}
	rec.ID = id
	return nil
}

// GetByID retrieves a session record
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.SessionRecord, error) {
	doc, err := r.store.Get(ctx, models.CollectionSessions, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrTokenRevoked)
	}
	return decode(doc, func(s *models.SessionRecord, id string) { s.ID = id })
}

// Revoke marks a session as signed out
func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	if err := r.store.Update(ctx, models.CollectionSessions, id, map[string]any{"revokedAt": at}); err != nil {
		return notFound(err, apperrors.ErrTokenRevoked)
	}
	return nil
}
