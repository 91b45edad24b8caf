package services

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/app/session"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// DepartmentService computes the department head's placement overview
type DepartmentService struct {
	profileRepo *repositories.ProfileRepository
	appRepo     *repositories.ApplicationRepository
	driveRepo   *repositories.DriveRepository
	requestRepo *repositories.ApprovalRequestRepository
	logger      zerolog.Logger
}

// NewDepartmentService creates a new department service instance
func NewDepartmentService(
	profileRepo *repositories.ProfileRepository,
	appRepo *repositories.ApplicationRepository,
	driveRepo *repositories.DriveRepository,
	requestRepo *repositories.ApprovalRequestRepository,
	logger zerolog.Logger,
) *DepartmentService {
	return &DepartmentService{
		profileRepo: profileRepo,
		appRepo:     appRepo,
		driveRepo:   driveRepo,
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// Overview summarizes the head's own department. A student counts as placed
// once any of their applications is Approved.
func (s *DepartmentService) Overview(ctx context.Context, head *session.Session) (*models.DepartmentOverview, error) {
	hod, ok := head.HOD()
	if !ok {
		return nil, apperrors.NewForbiddenError("only heads of department can view the department overview")
	}

	students, err := s.profileRepo.ListStudentsByDepartment(ctx, hod.Department)
	if err != nil {
		s.logger.Error().Err(err).Str("department", hod.Department).Msg("Failed to list department students")
		return nil, fmt.Errorf("error building overview: %w", err)
	}
	pending, err := s.requestRepo.GetByDepartment(ctx, hod.Department, models.ApprovalPending)
	if err != nil {
		return nil, fmt.Errorf("error building overview: %w", err)
	}
	apps, err := s.appRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error building overview: %w", err)
	}
	active, err := s.driveRepo.GetByStatus(ctx, models.DriveActive)
	if err != nil {
		return nil, fmt.Errorf("error building overview: %w", err)
	}

	overview := &models.DepartmentOverview{
		Department:      hod.Department,
		Students:        len(students),
		PendingRequests: len(pending),
	}

	inDept := make(map[string]bool, len(students))
	for _, st := range students {
		inDept[st.UID] = true
		if st.Approved {
			overview.ApprovedStudents++
		}
	}

	placed := make(map[string]bool)
	for _, a := range apps {
		if a.Status == models.StatusApproved && inDept[a.StudentID] {
			placed[a.StudentID] = true
		}
	}
	overview.PlacedStudents = len(placed)
	if overview.Students > 0 {
		rate := float64(overview.PlacedStudents) / float64(overview.Students) * 100
		overview.PlacementRate = math.Round(rate*10) / 10
	}

	companies := make(map[string]bool)
	for _, d := range active {
		companies[d.CompanyName] = true
	}
	overview.ActiveCompanies = len(companies)

	return overview, nil
}
