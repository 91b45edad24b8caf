package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/app/session"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/auth"
	"github.com/yigit/campusconnect/internal/pkg/identity"
)

// AuthResult is a signed-in session with its bearer token
type AuthResult struct {
	Token     string
	ExpiresIn int
	Session   *session.Session
}

// AuthService signs visitors in and out and resolves bearer tokens back into
// sessions
type AuthService struct {
	provider   identity.Provider
	profiles   *repositories.ProfileRepository
	sessions   *repositories.SessionRepository
	approvals  *ApprovalService
	jwtService *auth.JWTService
	opts       Options
	now        func() time.Time
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	provider identity.Provider,
	profiles *repositories.ProfileRepository,
	sessions *repositories.SessionRepository,
	approvals *ApprovalService,
	jwtService *auth.JWTService,
	opts Options,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		provider:   provider,
		profiles:   profiles,
		sessions:   sessions,
		approvals:  approvals,
		jwtService: jwtService,
		opts:       opts,
		now:        opts.clock(),
		logger:     logger,
	}
}

// SignUp creates an account, its profile for the chosen role and, for
// students, an approval request to their department
func (s *AuthService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*AuthResult, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	id, err := s.provider.SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, mapIdentityError(err)
	}

	profile, err := models.NewDefaultProfile(role, models.ProfileBase{
		UID:       id.UID,
		Name:      id.Name(),
		Email:     id.Email,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	applySignUpFields(profile, req)

	if err := s.profiles.Save(ctx, profile); err != nil {
		s.logger.Error().Err(err).Str("uid", id.UID).Str("role", string(role)).Msg("Failed to create profile at sign-up")
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if student, ok := profile.(*models.StudentProfile); ok {
		if _, err := s.approvals.CreateRequest(ctx, student); err != nil {
			// The next sign-in files the request again.
			s.logger.Error().Err(err).Str("uid", id.UID).Msg("Failed to file approval request at sign-up")
		}
	}

	sess := session.New(s.profiles).WithClock(s.now)
	if err := sess.Load(ctx, id, role, false); err != nil {
		return nil, err
	}
	return s.issue(ctx, sess)
}

// SignIn verifies the credentials and loads the profile of the chosen role
func (s *AuthService) SignIn(ctx context.Context, req *dto.SignInRequest) (*AuthResult, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	id, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, mapIdentityError(err)
	}

	sess := session.New(s.profiles).WithClock(s.now)
	createMissing := s.opts.CreateProfileOnSignIn && role.SelfService()
	if err := sess.Load(ctx, id, role, createMissing); err != nil {
		if errors.Is(err, apperrors.ErrProfileNotFound) {
			return nil, apperrors.NewForbiddenError(fmt.Sprintf("this account is not registered as %s", role.DisplayName()))
		}
		return nil, err
	}

	if student, ok := sess.Student(); ok && !student.Approved {
		if err := s.approvals.EnsureRequest(ctx, student); err != nil {
			s.logger.Warn().Err(err).Str("uid", id.UID).Msg("Failed to ensure approval request")
		}
	}

	return s.issue(ctx, sess)
}

// SignOut revokes the session and clears it
func (s *AuthService) SignOut(ctx context.Context, sess *session.Session) error {
	if sess == nil || !sess.Loaded() {
		return apperrors.ErrUnauthenticated
	}

	if err := s.provider.SignOut(identity.WithIdentity(ctx, sess.Identity)); err != nil {
		s.logger.Warn().Err(err).Str("uid", sess.Identity.UID).Msg("Identity provider sign-out failed")
	}
	if err := s.sessions.Revoke(ctx, sess.ID, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	sess.Clear()
	return nil
}

// Authenticate resolves a bearer token into a loaded session
func (s *AuthService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	rec, err := s.sessions.GetByID(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if rec.RevokedAt != nil {
		return nil, apperrors.ErrTokenRevoked
	}
	if rec.UID != claims.UserID || string(rec.Role) != claims.Role {
		return nil, apperrors.ErrTokenInvalid
	}

	id := &identity.Identity{UID: rec.UID, Email: rec.Email, DisplayName: rec.DisplayName}
	sess := session.New(s.profiles).WithClock(s.now)
	if err := sess.Load(ctx, id, rec.Role, false); err != nil {
		if errors.Is(err, apperrors.ErrProfileNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}
	sess.ID = rec.ID
	return sess, nil
}

func (s *AuthService) issue(ctx context.Context, sess *session.Session) (*AuthResult, error) {
	now := s.now().UTC()
	rec := &models.SessionRecord{
		UID:         sess.Identity.UID,
		Email:       sess.Identity.Email,
		DisplayName: sess.Identity.DisplayName,
		Role:        sess.Role,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.jwtService.TokenLifetime()),
	}
	if err := s.sessions.Create(ctx, rec); err != nil {
		return nil, err
	}

	token, expiresIn, err := s.jwtService.GenerateToken(auth.TokenSubject{
		UserID:    rec.UID,
		Email:     rec.Email,
		Role:      string(rec.Role),
		SessionID: rec.ID,
	})
	if err != nil {
		return nil, err
	}

	sess.ID = rec.ID
	s.logger.Info().Str("uid", rec.UID).Str("role", string(rec.Role)).Msg("Session started")
	return &AuthResult{Token: token, ExpiresIn: expiresIn, Session: sess}, nil
}

// applySignUpFields copies the optional sign-up fields over the role defaults
func applySignUpFields(profile models.Profile, req *dto.SignUpRequest) {
	if name := strings.TrimSpace(req.Name); name != "" {
		profile.Base().Name = name
	}
	department := strings.TrimSpace(req.Department)

	switch p := profile.(type) {
	case *models.StudentProfile:
		if branch := strings.TrimSpace(req.Branch); branch != "" {
			p.Branch = branch
			p.Department = branch
		}
		if department != "" {
			p.Department = department
		}
		if req.Year != "" {
			p.Year = req.Year
		}
		if req.CGPA != nil {
			p.CGPA = *req.CGPA
		}
	case *models.ManagerProfile:
		if department != "" {
			p.Department = department
		}
	case *models.HODProfile:
		if department != "" {
			p.Department = department
		}
	}
}

// mapIdentityError keeps the provider's message, which is shown verbatim
func mapIdentityError(err error) error {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, err.Error())
	case errors.Is(err, identity.ErrAccountExists):
		return apperrors.NewCustomError(apperrors.ErrAccountExists, err.Error())
	case errors.Is(err, identity.ErrWeakPassword), errors.Is(err, identity.ErrInvalidEmail):
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error())
	}
	return err
}
