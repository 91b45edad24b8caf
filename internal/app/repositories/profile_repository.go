package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/docstore"
)

// ProfileRepository stores one profile document per identity in each role's
// collection, keyed by the identity UID.
type ProfileRepository struct {
	store docstore.Store
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(store docstore.Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

// Get loads the profile of uid under role
func (r *ProfileRepository) Get(ctx context.Context, role models.Role, uid string) (models.Profile, error) {
	doc, err := r.store.Get(ctx, role.Collection(), uid)
	if err != nil {
		return nil, notFound(err, apperrors.ErrProfileNotFound)
	}

	profile, err := models.NewEmptyProfile(role)
	if err != nil {
		return nil, err
	}
	if err := doc.DataTo(profile); err != nil {
		return nil, err
	}
	profile.Base().UID = doc.ID
	return profile, nil
}

// Save creates or replaces a profile
func (r *ProfileRepository) Save(ctx context.Context, profile models.Profile) error {
	uid := profile.Base().UID
	if uid == "" {
		return fmt.Errorf("profile has no uid")
	}
	if err := r.store.Set(ctx, profile.Role().Collection(), uid, profile); err != nil {
		return fmt.Errorf("error saving %s profile: %w", profile.Role(), err)
	}
	return nil
}

// SetStudentApproved flips the approval flag on a student profile
func (r *ProfileRepository) SetStudentApproved(ctx context.Context, uid string, approved bool) error {
	err := r.store.Update(ctx, models.CollectionStudents, uid, map[string]any{"approved": approved})
	if err != nil {
		return notFound(err, apperrors.ErrProfileNotFound)
	}
	return nil
}

// ListStudentsByDepartment retrieves the student profiles of a department
func (r *ProfileRepository) ListStudentsByDepartment(ctx context.Context, department string) ([]*models.StudentProfile, error) {
	docs, err := r.store.Query(ctx, models.CollectionStudents, []docstore.Filter{docstore.Where("department", department)}, nil)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return decodeAll(docs, func(p *models.StudentProfile, id string) { p.UID = id })
}
