// Package session holds the role context of a signed-in visitor: the identity,
// the role chosen at sign-in and the profile document of that role.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/identity"
)

// ErrNotLoaded is returned by operations that need a loaded session
var ErrNotLoaded = errors.New("session not loaded")

// ProfileStore reads and writes role profiles
type ProfileStore interface {
	Get(ctx context.Context, role models.Role, uid string) (models.Profile, error)
	Save(ctx context.Context, profile models.Profile) error
}

// Session is the role context of one visitor. The profile it holds mirrors
// the stored document; the store stays authoritative and Refresh re-reads it.
type Session struct {
	ID       string
	Identity *identity.Identity
	Role     models.Role
	Profile  models.Profile

	profiles ProfileStore
	now      func() time.Time
}

// New creates an empty session over profiles
func New(profiles ProfileStore) *Session {
	return &Session{profiles: profiles, now: time.Now}
}

// WithClock overrides the time stamped on created profiles
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// Load binds the session to id acting as role. When createMissing is set a
// profile with the role's defaults is created if none exists yet; otherwise a
// missing profile fails with apperrors.ErrProfileNotFound.
func (s *Session) Load(ctx context.Context, id *identity.Identity, role models.Role, createMissing bool) error {
	if id == nil {
		return apperrors.ErrUnauthenticated
	}
	if role.Collection() == "" {
		return apperrors.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}

	profile, err := s.profiles.Get(ctx, role, id.UID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrProfileNotFound) && createMissing:
		profile, err = models.NewDefaultProfile(role, models.ProfileBase{
			UID:       id.UID,
			Name:      id.Name(),
			Email:     id.Email,
			CreatedAt: s.now().UTC(),
		})
		if err != nil {
			return err
		}
		if err := s.profiles.Save(ctx, profile); err != nil {
			return fmt.Errorf("failed to create %s profile: %w", role, err)
		}
	default:
		return err
	}

	s.Identity = id
	s.Role = role
	s.Profile = profile
	return nil
}

// Refresh re-reads the profile from the store
func (s *Session) Refresh(ctx context.Context) error {
	if !s.Loaded() {
		return ErrNotLoaded
	}
	profile, err := s.profiles.Get(ctx, s.Role, s.Identity.UID)
	if err != nil {
		return err
	}
	s.Profile = profile
	return nil
}

// Clear drops the identity, role and cached profile
func (s *Session) Clear() {
	s.ID = ""
	s.Identity = nil
	s.Role = ""
	s.Profile = nil
}

// Loaded reports whether the session is bound to an identity
func (s *Session) Loaded() bool {
	return s.Identity != nil && s.Profile != nil
}

// ActorName is the name recorded when this session changes a document
func (s *Session) ActorName() string {
	if !s.Loaded() {
		return ""
	}
	if name := s.Profile.Base().Name; name != "" {
		return name
	}
	return s.Identity.Name()
}

// Student returns the applicant profile when acting as a student
func (s *Session) Student() (*models.StudentProfile, bool) {
	p, ok := s.Profile.(*models.StudentProfile)
	return p, ok
}

// Manager returns the drive-manager profile when acting as a manager
func (s *Session) Manager() (*models.ManagerProfile, bool) {
	p, ok := s.Profile.(*models.ManagerProfile)
	return p, ok
}

// HOD returns the department-head profile when acting as a head of department
func (s *Session) HOD() (*models.HODProfile, bool) {
	p, ok := s.Profile.(*models.HODProfile)
	return p, ok
}

type contextKey struct{}

// NewContext returns a context carrying s
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
