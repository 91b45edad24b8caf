package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/docstore"
)

// ApprovalRequestRepository handles storage of department approval requests
type ApprovalRequestRepository struct {
	store docstore.Store
}

// NewApprovalRequestRepository creates a new approval request repository
func NewApprovalRequestRepository(store docstore.Store) *ApprovalRequestRepository {
	return &ApprovalRequestRepository{store: store}
}

func setApprovalRequestID(r *models.ApprovalRequest, id string) { r.ID = id }

// Create stores a new request and sets its ID
func (r *ApprovalRequestRepository) Create(ctx context.Context, req *models.ApprovalRequest) error {
	fields := *req
	fields.ID = ""
	id, err := r.store.Create(ctx, models.CollectionHODRequests, fields)
	if err != nil {
		return fmt.Errorf("error creating approval request: %w", err)
	}
	req.ID = id
	return nil
}

// GetByID retrieves a request by ID
func (r *ApprovalRequestRepository) GetByID(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	doc, err := r.store.Get(ctx, models.CollectionHODRequests, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrApprovalRequestNotFound)
	}
	return decode(doc, setApprovalRequestID)
}

// GetByDepartment retrieves the requests of a department in one status,
// oldest first
func (r *ApprovalRequestRepository) GetByDepartment(ctx context.Context, department string, status models.ApprovalStatus) ([]*models.ApprovalRequest, error) {
	filters := []docstore.Filter{
		docstore.Where("department", department),
		docstore.Where("status", string(status)),
	}
	docs, err := r.store.Query(ctx, models.CollectionHODRequests, filters, nil)
	if err != nil {
		return nil, fmt.Errorf("error listing approval requests: %w", err)
	}
	return decodeAll(docs, setApprovalRequestID)
}

// GetByStudent retrieves the requests filed for one applicant
func (r *ApprovalRequestRepository) GetByStudent(ctx context.Context, studentID string) ([]*models.ApprovalRequest, error) {
	docs, err := r.store.Query(ctx, models.CollectionHODRequests, studentFilter(studentID), nil)
	if err != nil {
		return nil, fmt.Errorf("error listing approval requests: %w", err)
	}
	return decodeAll(docs, setApprovalRequestID)
}

// Resolve overwrites the status and stamps the resolver. It does not check the
// current status.
func (r *ApprovalRequestRepository) Resolve(ctx context.Context, id string, status models.ApprovalStatus, by string, at time.Time) error {
	fields := map[string]any{"status": string(status)}
	switch status {
	case models.ApprovalApproved:
		fields["approvedBy"] = by
		fields["approvedAt"] = at
	case models.ApprovalRejected:
		fields["rejectedBy"] = by
		fields["rejectedAt"] = at
	default:
		return fmt.Errorf("cannot resolve a request to %q", status)
	}

	if err := r.store.Update(ctx, models.CollectionHODRequests, id, fields); err != nil {
		return notFound(err, apperrors.ErrApprovalRequestNotFound)
	}
	return nil
}
