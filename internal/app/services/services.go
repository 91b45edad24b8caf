// Package services implements the placement workflows on top of the
// repositories: sessions, the drive catalog, the application store, the
// application status workflow and the department approval queue.
package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/pkg/auth"
	"github.com/yigit/campusconnect/internal/pkg/identity"
	"github.com/yigit/campusconnect/internal/pkg/notify"
)

// Options tunes service behaviour
type Options struct {
	// ApprovalRequired keeps students from applying until a head of
	// department has approved their account.
	ApprovalRequired bool
	// CreateProfileOnSignIn creates a student profile with defaults when an
	// existing account signs in as a student without having one. Manager and
	// head-of-department profiles are never created at sign-in.
	CreateProfileOnSignIn bool
	// NotificationFrom signs status notifications. Empty means the channel
	// default.
	NotificationFrom string
	// Now is the clock used for every stored timestamp.
	Now func() time.Time
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}

// Services holds all the service instances
type Services struct {
	AuthService        *AuthService
	DriveService       *DriveService
	ApplicationService *ApplicationService
	StatusWorkflow     *StatusWorkflow
	ApprovalService    *ApprovalService
	DepartmentService  *DepartmentService
}

// NewServices wires every service
func NewServices(
	repos *repositories.Repositories,
	provider identity.Provider,
	jwtService *auth.JWTService,
	channel notify.Channel,
	opts Options,
	logger zerolog.Logger,
) *Services {
	approvals := NewApprovalService(repos.ApprovalRequestRepository, repos.ProfileRepository, opts, logger)
	return &Services{
		AuthService:        NewAuthService(provider, repos.ProfileRepository, repos.SessionRepository, approvals, jwtService, opts, logger),
		DriveService:       NewDriveService(repos.DriveRepository, opts, logger),
		ApplicationService: NewApplicationService(repos.ApplicationRepository, repos.DriveRepository, opts, logger),
		StatusWorkflow:     NewStatusWorkflow(repos.ApplicationRepository, channel, opts, logger),
		ApprovalService:    approvals,
		DepartmentService:  NewDepartmentService(repos.ProfileRepository, repos.ApplicationRepository, repos.DriveRepository, repos.ApprovalRequestRepository, logger),
	}
}
