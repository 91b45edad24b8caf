package repositories

import (
	"errors"
	"fmt"

	"github.com/yigit/campusconnect/internal/pkg/docstore"
)

// Repositories holds all the repository instances
type Repositories struct {
	ProfileRepository         *ProfileRepository
	DriveRepository           *DriveRepository
	ApplicationRepository     *ApplicationRepository
	ApprovalRequestRepository *ApprovalRequestRepository
	SessionRepository         *SessionRepository
}

// NewRepositories initializes all repositories over one document store
func NewRepositories(store docstore.Store) *Repositories {
	return &Repositories{
		ProfileRepository:         NewProfileRepository(store),
		DriveRepository:           NewDriveRepository(store),
		ApplicationRepository:     NewApplicationRepository(store),
		ApprovalRequestRepository: NewApprovalRequestRepository(store),
		SessionRepository:         NewSessionRepository(store),
	}
}

// decode converts a stored document into a model and hands it to setID so the
// model carries the document ID.
func decode[T any](doc *docstore.Document, setID func(*T, string)) (*T, error) {
	var v T
	if err := doc.DataTo(&v); err != nil {
		return nil, err
	}
	setID(&v, doc.ID)
	return &v, nil
}

func decodeAll[T any](docs []*docstore.Document, setID func(*T, string)) ([]*T, error) {
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode(doc, setID)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// notFound maps docstore.ErrNotFound to the repository's own not-found error
func notFound(err error, target error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %v", target, err)
	}
	return err
}
