package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/app/session"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// ApplicationService records applications against drives and serves the
// snapshot and live views over them
type ApplicationService struct {
	appRepo   *repositories.ApplicationRepository
	driveRepo *repositories.DriveRepository
	opts      Options
	now       func() time.Time
	logger    zerolog.Logger
}

// NewApplicationService creates a new application service instance
func NewApplicationService(
	appRepo *repositories.ApplicationRepository,
	driveRepo *repositories.DriveRepository,
	opts Options,
	logger zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		appRepo:   appRepo,
		driveRepo: driveRepo,
		opts:      opts,
		now:       opts.clock(),
		logger:    logger,
	}
}

// Submit files the applicant's application to a drive. The duplicate check
// reads before it writes, so two concurrent submits for the same pair can
// both succeed.
func (s *ApplicationService) Submit(ctx context.Context, applicant *session.Session, driveID string) (*models.Application, error) {
	student, ok := applicant.Student()
	if !ok {
		return nil, apperrors.NewForbiddenError("only students can apply to drives")
	}
	if s.opts.ApprovalRequired && !student.Approved {
		return nil, apperrors.ErrApprovalPending
	}
	if strings.TrimSpace(driveID) == "" {
		return nil, apperrors.NewValidationError("drive id is required")
	}

	drive, err := s.driveRepo.GetByID(ctx, driveID)
	if err != nil {
		return nil, err
	}
	if drive.Status != models.DriveActive {
		return nil, apperrors.ErrDriveClosed
	}
	if !drive.EligibleFor(student.CGPA) {
		return nil, apperrors.ErrNotEligible
	}

	existing, err := s.appRepo.GetByStudent(ctx, student.UID)
	if err != nil {
		s.logger.Error().Err(err).Str("studentId", student.UID).Msg("Failed to read applications before submit")
		return nil, fmt.Errorf("error checking existing applications: %w", err)
	}
	for _, a := range existing {
		if a.DriveID == driveID {
			return nil, apperrors.ErrDuplicateApplication
		}
	}

	app := &models.Application{
		DriveID:       drive.ID,
		StudentID:     student.UID,
		StudentName:   applicant.ActorName(),
		StudentEmail:  student.Email,
		StudentBranch: student.Branch,
		StudentCGPA:   student.CGPA,
		CompanyName:   drive.CompanyName,
		RoleOffered:   drive.RoleOffered,
		Status:        models.StatusApplied,
		AppliedAt:     s.now().UTC(),
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		s.logger.Error().Err(err).Str("driveId", driveID).Str("studentId", student.UID).Msg("Failed to create application")
		return nil, fmt.Errorf("error submitting application: %w", err)
	}

	if err := s.driveRepo.IncrementApplicationsCount(ctx, drive.ID); err != nil {
		s.logger.Warn().Err(err).Str("driveId", drive.ID).Msg("Failed to bump drive applications count")
	}

	s.logger.Info().
		Str("applicationId", app.ID).
		Str("driveId", drive.ID).
		Str("studentId", student.UID).
		Msg("Application submitted")
	return app, nil
}

// Get retrieves an application by ID
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("application id is required")
	}
	return s.appRepo.GetByID(ctx, id)
}

// ListAll returns every application, newest first
func (s *ApplicationService) ListAll(ctx context.Context) ([]*models.Application, error) {
	return s.appRepo.GetAll(ctx)
}

// ListMine returns one applicant's applications, newest first
func (s *ApplicationService) ListMine(ctx context.Context, studentID string) ([]*models.Application, error) {
	return s.appRepo.GetByStudent(ctx, studentID)
}

// ListForSession returns the applications the session's role may see
func (s *ApplicationService) ListForSession(ctx context.Context, sess *session.Session) ([]*models.Application, error) {
	switch p := sess.Profile.(type) {
	case *models.StudentProfile:
		return s.ListMine(ctx, p.UID)
	case *models.ManagerProfile, *models.HODProfile:
		return s.ListAll(ctx)
	}
	return nil, apperrors.ErrUnauthenticated
}

// SubscribeAll opens a live feed over every application. The caller owns the
// feed and must cancel it.
func (s *ApplicationService) SubscribeAll(ctx context.Context) (*repositories.ApplicationFeed, error) {
	return s.appRepo.SubscribeAll(ctx)
}

// SubscribeMine opens a live feed over one applicant's applications
func (s *ApplicationService) SubscribeMine(ctx context.Context, studentID string) (*repositories.ApplicationFeed, error) {
	if studentID == "" {
		return nil, apperrors.NewValidationError("student id is required")
	}
	return s.appRepo.SubscribeByStudent(ctx, studentID)
}

// SubscribeForSession opens the live feed matching the session's role
func (s *ApplicationService) SubscribeForSession(ctx context.Context, sess *session.Session) (*repositories.ApplicationFeed, error) {
	switch p := sess.Profile.(type) {
	case *models.StudentProfile:
		return s.SubscribeMine(ctx, p.UID)
	case *models.ManagerProfile, *models.HODProfile:
		return s.SubscribeAll(ctx)
	}
	return nil, apperrors.ErrUnauthenticated
}
