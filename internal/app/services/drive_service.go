package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/app/session"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// DriveService manages the placement drive catalog
type DriveService struct {
	driveRepo *repositories.DriveRepository
	now       func() time.Time
	logger    zerolog.Logger
}

// NewDriveService creates a new drive service instance
func NewDriveService(driveRepo *repositories.DriveRepository, opts Options, logger zerolog.Logger) *DriveService {
	return &DriveService{
		driveRepo: driveRepo,
		now:       opts.clock(),
		logger:    logger,
	}
}

// CreateDrive posts a new active drive on behalf of a drive manager
func (s *DriveService) CreateDrive(ctx context.Context, actor *session.Session, req *dto.CreateDriveRequest) (*models.Drive, error) {
	if _, ok := actor.Manager(); !ok {
		return nil, apperrors.NewForbiddenError("only placement managers can create drives")
	}

	drive := &models.Drive{
		CompanyName:         strings.TrimSpace(req.CompanyName),
		RoleOffered:         strings.TrimSpace(req.RoleOffered),
		SalaryOffered:       strings.TrimSpace(req.SalaryOffered),
		JobDescription:      req.JobDescription,
		Requirements:        req.Requirements,
		EligibilityCriteria: req.EligibilityCriteria,
		AdditionalInfo:      req.AdditionalInfo,
		Location:            strings.TrimSpace(req.Location),
		JobType:             strings.TrimSpace(req.JobType),
		ApplicationDeadline: req.ApplicationDeadline,
		InterviewDate:       req.InterviewDate,
		ContactEmail:        strings.TrimSpace(req.ContactEmail),
		Status:              models.DriveActive,
		CreatedAt:           s.now().UTC(),
		CreatedBy:           actor.Identity.UID,
		CreatedByEmail:      actor.Identity.Email,
	}
	if drive.JobType == "" {
		drive.JobType = models.DefaultJobType
	}
	if req.CGPACriteria != nil {
		drive.CGPACriteria = *req.CGPACriteria
	}
	if drive.CompanyName == "" || drive.RoleOffered == "" {
		return nil, apperrors.NewValidationError("company name and role are required")
	}

	if err := s.driveRepo.Create(ctx, drive); err != nil {
		s.logger.Error().Err(err).Str("company", drive.CompanyName).Msg("Failed to create drive")
		return nil, fmt.Errorf("error creating drive: %w", err)
	}

	s.logger.Info().Str("driveId", drive.ID).Str("company", drive.CompanyName).Msg("Placement drive created")
	return drive, nil
}

// ListAllDrives returns every drive, newest first
func (s *DriveService) ListAllDrives(ctx context.Context) ([]*models.Drive, error) {
	return s.driveRepo.GetAll(ctx)
}

// ListDrives returns the active drives whose grade threshold is at most cgpa
func (s *DriveService) ListDrives(ctx context.Context, cgpa float64) ([]*models.Drive, error) {
	active, err := s.driveRepo.GetByStatus(ctx, models.DriveActive)
	if err != nil {
		return nil, err
	}

	eligible := make([]*models.Drive, 0, len(active))
	for _, d := range active {
		if d.EligibleFor(cgpa) {
			eligible = append(eligible, d)
		}
	}
	return eligible, nil
}

// ListForSession returns the drives the session's role may browse
func (s *DriveService) ListForSession(ctx context.Context, sess *session.Session) ([]*models.Drive, error) {
	switch p := sess.Profile.(type) {
	case *models.StudentProfile:
		return s.ListDrives(ctx, p.CGPA)
	case *models.ManagerProfile, *models.HODProfile:
		return s.ListAllDrives(ctx)
	}
	return nil, apperrors.ErrUnauthenticated
}

// GetDrive retrieves a drive by ID
func (s *DriveService) GetDrive(ctx context.Context, id string) (*models.Drive, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("drive id is required")
	}
	return s.driveRepo.GetByID(ctx, id)
}

// GetForSession retrieves a drive the session's role may browse. Students only
// see drives ListForSession would show them; any other drive is not found.
func (s *DriveService) GetForSession(ctx context.Context, sess *session.Session, id string) (*models.Drive, error) {
	drive, err := s.GetDrive(ctx, id)
	if err != nil {
		return nil, err
	}

	switch p := sess.Profile.(type) {
	case *models.StudentProfile:
		if drive.Status != models.DriveActive || !drive.EligibleFor(p.CGPA) {
			return nil, apperrors.ErrDriveNotFound
		}
		return drive, nil
	case *models.ManagerProfile, *models.HODProfile:
		return drive, nil
	}
	return nil, apperrors.ErrUnauthenticated
}

// SetDriveStatus opens or closes a drive. Any status may follow any other.
func (s *DriveService) SetDriveStatus(ctx context.Context, id string, status string) (*models.Drive, error) {
	st, err := models.ParseDriveStatus(status)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.driveRepo.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	return s.driveRepo.GetByID(ctx, id)
}
