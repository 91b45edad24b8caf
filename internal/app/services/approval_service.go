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

// ApprovalService runs the department approval queue for new applicants
type ApprovalService struct {
	requestRepo *repositories.ApprovalRequestRepository
	profileRepo *repositories.ProfileRepository
	now         func() time.Time
	logger      zerolog.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	requestRepo *repositories.ApprovalRequestRepository,
	profileRepo *repositories.ProfileRepository,
	opts Options,
	logger zerolog.Logger,
) *ApprovalService {
	return &ApprovalService{
		requestRepo: requestRepo,
		profileRepo: profileRepo,
		now:         opts.clock(),
		logger:      logger,
	}
}

// CreateRequest files a pending request with the student's department
func (s *ApprovalService) CreateRequest(ctx context.Context, student *models.StudentProfile) (*models.ApprovalRequest, error) {
	if student == nil || student.UID == "" {
		return nil, apperrors.NewValidationError("student profile is required")
	}

	req := &models.ApprovalRequest{
		StudentID:    student.UID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		Department:   student.Department,
		Branch:       student.Branch,
		Status:       models.ApprovalPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		s.logger.Error().Err(err).Str("studentId", student.UID).Msg("Failed to create approval request")
		return nil, fmt.Errorf("error filing approval request: %w", err)
	}

	s.logger.Info().
		Str("requestId", req.ID).
		Str("studentId", student.UID).
		Str("department", req.Department).
		Msg("Approval request filed")
	return req, nil
}

// EnsureRequest files a request for an unapproved student that has never had
// one. A rejected request is not re-filed.
func (s *ApprovalService) EnsureRequest(ctx context.Context, student *models.StudentProfile) error {
	if student == nil || student.Approved {
		return nil
	}
	existing, err := s.requestRepo.GetByStudent(ctx, student.UID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = s.CreateRequest(ctx, student)
	return err
}

// ListPending returns the pending requests of the head's own department
func (s *ApprovalService) ListPending(ctx context.Context, head *session.Session) ([]*models.ApprovalRequest, error) {
	hod, ok := head.HOD()
	if !ok {
		return nil, apperrors.NewForbiddenError("only heads of department can review approval requests")
	}
	return s.requestRepo.GetByDepartment(ctx, hod.Department, models.ApprovalPending)
}

// Approve marks the request approved and then sets the student's approved
// flag. The two writes are not atomic: when the second fails the request stays
// approved and ErrApprovalPartiallyApplied is returned with it.
func (s *ApprovalService) Approve(ctx context.Context, head *session.Session, requestID string) (*models.ApprovalRequest, error) {
	req, by, err := s.pending(ctx, head, requestID)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	if err := s.requestRepo.Resolve(ctx, req.ID, models.ApprovalApproved, by, at); err != nil {
		s.logger.Error().Err(err).Str("requestId", req.ID).Msg("Failed to approve request")
		return nil, fmt.Errorf("error approving request: %w", err)
	}
	req.Status = models.ApprovalApproved
	req.ApprovedBy = by
	req.ApprovedAt = &at

	if err := s.profileRepo.SetStudentApproved(ctx, req.StudentID, true); err != nil {
		s.logger.Error().Err(err).
			Str("requestId", req.ID).
			Str("studentId", req.StudentID).
			Msg("Approval recorded but student profile not updated")
		return req, fmt.Errorf("%w: %v", apperrors.ErrApprovalPartiallyApplied, err)
	}

	s.logger.Info().Str("requestId", req.ID).Str("studentId", req.StudentID).Str("by", by).Msg("Student approved")
	return req, nil
}

// Reject marks the request rejected
func (s *ApprovalService) Reject(ctx context.Context, head *session.Session, requestID string) (*models.ApprovalRequest, error) {
	req, by, err := s.pending(ctx, head, requestID)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	if err := s.requestRepo.Resolve(ctx, req.ID, models.ApprovalRejected, by, at); err != nil {
		s.logger.Error().Err(err).Str("requestId", req.ID).Msg("Failed to reject request")
		return nil, fmt.Errorf("error rejecting request: %w", err)
	}
	req.Status = models.ApprovalRejected
	req.RejectedBy = by
	req.RejectedAt = &at

	s.logger.Info().Str("requestId", req.ID).Str("studentId", req.StudentID).Str("by", by).Msg("Student rejected")
	return req, nil
}

// pending loads a request the head may resolve
func (s *ApprovalService) pending(ctx context.Context, head *session.Session, requestID string) (*models.ApprovalRequest, string, error) {
	hod, ok := head.HOD()
	if !ok {
		return nil, "", apperrors.NewForbiddenError("only heads of department can resolve approval requests")
	}
	if strings.TrimSpace(requestID) == "" {
		return nil, "", apperrors.NewValidationError("request id is required")
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, "", err
	}
	if req.Department != hod.Department {
		return nil, "", apperrors.NewForbiddenError("this request belongs to another department")
	}
	if req.Status != models.ApprovalPending {
		return nil, "", apperrors.ErrRequestAlreadyResolved
	}
	return req, head.ActorName(), nil
}
