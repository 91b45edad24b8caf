package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/docstore"
)

// ErrFeedClosed is returned by ApplicationFeed.Next once the feed is cancelled
var ErrFeedClosed = errors.New("application feed closed")

// ApplicationRepository handles storage of applications
type ApplicationRepository struct {
	store docstore.Store
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(store docstore.Store) *ApplicationRepository {
	return &ApplicationRepository{store: store}
}

func setApplicationID(a *models.Application, id string) { a.ID = id }

// Create stores a new application and sets its ID
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	fields := *app
	fields.ID = ""
	id, err := r.store.Create(ctx, models.CollectionApplications, fields)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return apperrors.ErrDuplicateApplication
	}
	if err != nil {
		return fmt.Errorf("error creating application: %w", err)
	}
	app.ID = id
	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	doc, err := r.store.Get(ctx, models.CollectionApplications, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrApplicationNotFound)
	}
	return decode(doc, setApplicationID)
}

// GetAll retrieves every application, newest first
func (r *ApplicationRepository) GetAll(ctx context.Context) ([]*models.Application, error) {
	return r.query(ctx, nil)
}

// GetByStudent retrieves the applications of one applicant, newest first
func (r *ApplicationRepository) GetByStudent(ctx context.Context, studentID string) ([]*models.Application, error) {
	return r.query(ctx, studentFilter(studentID))
}

// UpdateStatus overwrites status, updatedAt and updatedBy
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, updatedAt time.Time, updatedBy string) error {
	err := r.store.Update(ctx, models.CollectionApplications, id, map[string]any{
		"status":    string(status),
		"updatedAt": updatedAt,
		"updatedBy": updatedBy,
	})
	if err != nil {
		return notFound(err, apperrors.ErrApplicationNotFound)
	}
	return nil
}

// SubscribeAll opens a live feed over every application
func (r *ApplicationRepository) SubscribeAll(ctx context.Context) (*ApplicationFeed, error) {
	return r.subscribe(ctx, nil)
}

// SubscribeByStudent opens a live feed over one applicant's applications
func (r *ApplicationRepository) SubscribeByStudent(ctx context.Context, studentID string) (*ApplicationFeed, error) {
	return r.subscribe(ctx, studentFilter(studentID))
}

func (r *ApplicationRepository) query(ctx context.Context, filters []docstore.Filter) ([]*models.Application, error) {
	docs, err := r.store.Query(ctx, models.CollectionApplications, filters, &docstore.OrderBy{Field: docstore.CreateTimeField, Desc: true})
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	return decodeAll(docs, setApplicationID)
}

func (r *ApplicationRepository) subscribe(ctx context.Context, filters []docstore.Filter) (*ApplicationFeed, error) {
	sub, err := r.store.Subscribe(ctx, models.CollectionApplications, filters)
	if err != nil {
		return nil, fmt.Errorf("error subscribing to applications: %w", err)
	}
	return &ApplicationFeed{sub: sub}, nil
}

func studentFilter(studentID string) []docstore.Filter {
	return []docstore.Filter{docstore.Where("studentId", studentID)}
}

// ApplicationFeed is a live view over a set of applications. It must be
// cancelled by its owner.
type ApplicationFeed struct {
	sub *docstore.Subscription
}

// Next blocks until the next snapshot of the set, newest application first.
// It returns ErrFeedClosed after Cancel and ctx.Err() when ctx ends first.
func (f *ApplicationFeed) Next(ctx context.Context) ([]*models.Application, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case docs, ok := <-f.sub.Snapshots():
		if !ok {
			return nil, ErrFeedClosed
		}
		apps, err := decodeAll(docs, setApplicationID)
		if err != nil {
			return nil, err
		}
		sortNewestFirst(docs, apps)
		return apps, nil
	}
}

// Done is closed once the feed is cancelled
func (f *ApplicationFeed) Done() <-chan struct{} {
	return f.sub.Done()
}

// Cancel releases the feed. Safe to call more than once.
func (f *ApplicationFeed) Cancel() {
	f.sub.Cancel()
}

// sortNewestFirst orders apps by the creation time of the matching docs
func sortNewestFirst(docs []*docstore.Document, apps []*models.Application) {
	created := make(map[string]time.Time, len(docs))
	for _, d := range docs {
		created[d.ID] = d.CreateTime
	}
	sort.SliceStable(apps, func(i, j int) bool {
		return created[apps[i].ID].After(created[apps[j].ID])
	})
}
