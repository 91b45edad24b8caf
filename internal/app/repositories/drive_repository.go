package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/docstore"
)

// DriveRepository handles storage of placement drives
type DriveRepository struct {
	store docstore.Store
}

// NewDriveRepository creates a new drive repository
func NewDriveRepository(store docstore.Store) *DriveRepository {
	return &DriveRepository{store: store}
}

func setDriveID(d *models.Drive, id string) { d.ID = id }

// Create stores a new drive and sets its ID
func (r *DriveRepository) Create(ctx context.Context, drive *models.Drive) error {
	id, err := r.store.Create(ctx, models.CollectionPlacementDrives, driveFields(drive))
	if err != nil {
		return fmt.Errorf("error creating drive: %w", err)
	}
	drive.ID = id
	return nil
}

// GetByID retrieves a drive by ID
func (r *DriveRepository) GetByID(ctx context.Context, id string) (*models.Drive, error) {
	doc, err := r.store.Get(ctx, models.CollectionPlacementDrives, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrDriveNotFound)
	}
	return decode(doc, setDriveID)
}

// GetAll retrieves every drive, newest first
func (r *DriveRepository) GetAll(ctx context.Context) ([]*models.Drive, error) {
	docs, err := r.store.Query(ctx, models.CollectionPlacementDrives, nil, &docstore.OrderBy{Field: docstore.CreateTimeField, Desc: true})
	if err != nil {
		return nil, fmt.Errorf("error listing drives: %w", err)
	}
	return decodeAll(docs, setDriveID)
}

// GetByStatus retrieves the drives in one lifecycle status
func (r *DriveRepository) GetByStatus(ctx context.Context, status models.DriveStatus) ([]*models.Drive, error) {
	docs, err := r.store.Query(ctx, models.CollectionPlacementDrives, []docstore.Filter{docstore.Where("status", string(status))}, nil)
	if err != nil {
		return nil, fmt.Errorf("error listing %s drives: %w", status, err)
	}
	return decodeAll(docs, setDriveID)
}

// UpdateStatus overwrites the drive status
func (r *DriveRepository) UpdateStatus(ctx context.Context, id string, status models.DriveStatus) error {
	err := r.store.Update(ctx, models.CollectionPlacementDrives, id, map[string]any{"status": string(status)})
	if err != nil {
		return notFound(err, apperrors.ErrDriveNotFound)
	}
	return nil
}

// IncrementApplicationsCount bumps the denormalized application counter. The
// read and the write are separate, so concurrent increments can be lost.
func (r *DriveRepository) IncrementApplicationsCount(ctx context.Context, id string) error {
	drive, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	err = r.store.Update(ctx, models.CollectionPlacementDrives, id, map[string]any{
		"applicationsCount": drive.ApplicationsCount + 1,
	})
	if err != nil {
		return notFound(err, apperrors.ErrDriveNotFound)
	}
	return nil
}

// driveFields drops the ID, which lives in the document key
func driveFields(d *models.Drive) models.Drive {
	cp := *d
	cp.ID = ""
	return cp
}
