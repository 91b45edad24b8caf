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
	"github.com/yigit/campusconnect/internal/pkg/helpers"
	"github.com/yigit/campusconnect/internal/pkg/notify"
)

// DefaultActorName is recorded as updatedBy when the acting manager has no name
const DefaultActorName = "Placement Manager"

// NotificationOutcome reports what happened to the notification of a status
// change
type NotificationOutcome struct {
	Channel   string
	Delivered bool
	Err       error
}

// TransitionResult is the stored application after a status change together
// with the notification outcome
type TransitionResult struct {
	Application  *models.Application
	Notification NotificationOutcome
}

// StatusWorkflow moves applications between statuses and notifies the
// applicant of every change
type StatusWorkflow struct {
	appRepo  *repositories.ApplicationRepository
	channel  notify.Channel
	fromName string
	now      func() time.Time
	logger   zerolog.Logger
}

// NewStatusWorkflow creates a new status workflow
func NewStatusWorkflow(
	appRepo *repositories.ApplicationRepository,
	channel notify.Channel,
	opts Options,
	logger zerolog.Logger,
) *StatusWorkflow {
	fromName := opts.NotificationFrom
	if fromName == "" {
		fromName = notify.DefaultFromName
	}
	return &StatusWorkflow{
		appRepo:  appRepo,
		channel:  channel,
		fromName: fromName,
		now:      opts.clock(),
		logger:   logger,
	}
}

// Transition stores the new status and then notifies the applicant. Moving
// to the current status is a real transition and notifies again. A failed
// notification is reported in the result and never undoes the stored status.
func (w *StatusWorkflow) Transition(ctx context.Context, applicationID string, status string, actor *session.Session) (*TransitionResult, error) {
	newStatus, err := models.ParseApplicationStatus(status)
	if err != nil {
		return nil, apperrors.ErrInvalidStatus.WithDetails(map[string]interface{}{"status": status})
	}

	current, err := w.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	updatedAt := helpers.ClampAfter(w.now().UTC(), current.UpdatedAt)
	updatedBy := actorName(actor)

	if err := w.appRepo.UpdateStatus(ctx, applicationID, newStatus, updatedAt, updatedBy); err != nil {
		w.logger.Error().Err(err).Str("applicationId", applicationID).Msg("Failed to update application status")
		return nil, fmt.Errorf("error updating application status: %w", err)
	}

	updated := *current
	updated.Status = newStatus
	updated.UpdatedAt = &updatedAt
	updated.UpdatedBy = updatedBy

	w.logger.Info().
		Str("applicationId", applicationID).
		Str("from", string(current.Status)).
		Str("to", string(newStatus)).
		Str("by", updatedBy).
		Msg("Application status changed")

	return &TransitionResult{
		Application:  &updated,
		Notification: w.notify(ctx, &updated),
	}, nil
}

func (w *StatusWorkflow) notify(ctx context.Context, app *models.Application) NotificationOutcome {
	outcome := NotificationOutcome{Channel: w.channel.Name()}

	n := notify.Notification{
		ToEmail:     app.StudentEmail,
		ToName:      app.StudentName,
		CompanyName: app.CompanyName,
		Status:      string(app.Status),
		Message:     StatusMessage(app.Status, app.RoleOffered, app.CompanyName),
		FromName:    w.fromName,
	}
	if err := w.channel.Send(ctx, n); err != nil {
		w.logger.Warn().Err(err).
			Str("applicationId", app.ID).
			Str("channel", outcome.Channel).
			Msg("Status notification not delivered")
		outcome.Err = fmt.Errorf("%w: %v", apperrors.ErrNotificationFailed, err)
		return outcome
	}

	outcome.Delivered = true
	return outcome
}

// StatusMessage is the sentence sent to the applicant for a status
func StatusMessage(status models.ApplicationStatus, role, company string) string {
	switch status {
	case models.StatusApproved:
		return fmt.Sprintf("Congratulations! Your application for %s at %s has been approved.", role, company)
	case models.StatusRejected:
		return fmt.Sprintf("Thank you for your interest in %s at %s. Unfortunately, your application was not selected.", role, company)
	case models.StatusOnHold:
		return fmt.Sprintf("Your application for %s at %s is currently on hold. We will update you soon.", role, company)
	case models.StatusApplied:
		return fmt.Sprintf("Your application for %s at %s has been received and is under review.", role, company)
	}
	return fmt.Sprintf("Your application for %s at %s is now %s.", role, company, status)
}

func actorName(actor *session.Session) string {
	if actor == nil {
		return DefaultActorName
	}
	if name := strings.TrimSpace(actor.ActorName()); name != "" {
		return name
	}
	return DefaultActorName
}
