package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/session"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

func submitted(t *testing.T, h *harness) (*session.Session, *models.Application) {
	t.Helper()
	mgr := h.manager(t, "priya@college.edu", "Priya Shah")
	driveID := h.drive(t, mgr, "Acme", 0)
	s := h.student(t, "asha@college.edu", "Computer Science", 8)
	app, err := h.svc.ApplicationService.Submit(context.Background(), s, driveID)
	require.NoError(t, err)
	return mgr, app
}

func TestStatusWorkflow_TransitionNotifiesApplicant(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	mgr, app := submitted(t, h)

	res, err := h.svc.StatusWorkflow.Transition(ctx, app.ID, "Approved", mgr)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, res.Application.Status)
	assert.Equal(t, "Priya Shah", res.Application.UpdatedBy)
	require.NotNil(t, res.Application.UpdatedAt)
	assert.True(t, res.Notification.Delivered)
	assert.NoError(t, res.Notification.Err)
	assert.Equal(t, "simulated", res.Notification.Channel)

	stored, err := h.svc.ApplicationService.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
	assert.Equal(t, "Priya Shah", stored.UpdatedBy)

	deliveries := h.channel.Deliveries()
	require.Len(t, deliveries, 1)
	n := deliveries[0]
	assert.Equal(t, "asha@college.edu", n.ToEmail)
	assert.Equal(t, "asha", n.ToName)
	assert.Equal(t, "Acme", n.CompanyName)
	assert.Equal(t, "Approved", n.Status)
	assert.Equal(t, "Placement Cell", n.FromName)
	assert.Equal(t, "Congratulations! Your application for Software Engineer at Acme has been approved.", n.Message)
	assert.Equal(t, "Application Status Update - Acme", n.Subject())
}

func TestStatusWorkflow_InvalidStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	mgr, app := submitted(t, h)

	_, err := h.svc.StatusWorkflow.Transition(ctx, app.ID, "Shortlisted", mgr)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "INVALID_STATUS", apperrors.Code(err))

	stored, err := h.svc.ApplicationService.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, stored.Status)
	assert.Empty(t, h.channel.Deliveries())
}

func TestStatusWorkflow_UnknownApplication(t *testing.T) {
	h := newHarness(t, defaultOptions())
	mgr := h.manager(t, "priya@college.edu", "Priya")

	_, err := h.svc.StatusWorkflow.Transition(context.Background(), "missing", "Approved", mgr)
	require.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestStatusWorkflow_NotificationFailureKeepsStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	mgr, app := submitted(t, h)
	h.channel.FailWith(errors.New("relay down"))

	res, err := h.svc.StatusWorkflow.Transition(ctx, app.ID, "Rejected", mgr)
	require.NoError(t, err)
	assert.False(t, res.Notification.Delivered)
	require.ErrorIs(t, res.Notification.Err, apperrors.ErrNotificationFailed)

	stored, err := h.svc.ApplicationService.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
}

func TestStatusWorkflow_LastTransitionWinsAndTimeNeverGoesBack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	mgr, app := submitted(t, h)

	first, err := h.svc.StatusWorkflow.Transition(ctx, app.ID, "On Hold", mgr)
	require.NoError(t, err)
	firstAt := *first.Application.UpdatedAt

	// Clock skew: the next write happens "earlier" than the previous one.
	h.clock.set(firstAt.Add(-time.Hour))

	second, err := h.svc.StatusWorkflow.Transition(ctx, app.ID, "Rejected", mgr)
	require.NoError(t, err)
	assert.False(t, second.Application.UpdatedAt.Before(firstAt))

	stored, err := h.svc.ApplicationService.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
	require.NotNil(t, stored.UpdatedAt)
	assert.False(t, stored.UpdatedAt.Before(firstAt))
}

func TestStatusWorkflow_SameStatusNotifiesAgain(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	mgr, app := submitted(t, h)

	for i := 0; i < 2; i++ {
		_, err := h.svc.StatusWorkflow.Transition(ctx, app.ID, "On Hold", mgr)
		require.NoError(t, err)
	}
	deliveries := h.channel.Deliveries()
	require.Len(t, deliveries, 2)
	assert.Equal(t, "Your application for Software Engineer at Acme is currently on hold. We will update you soon.", deliveries[1].Message)
}

func TestStatusWorkflow_ActorFallback(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	_, app := submitted(t, h)

	res, err := h.svc.StatusWorkflow.Transition(ctx, app.ID, "Applied", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultActorName, res.Application.UpdatedBy)
}

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		status models.ApplicationStatus
		want   string
	}{
		{models.StatusApproved, "Congratulations! Your application for SDE at Acme has been approved."},
		{models.StatusRejected, "Thank you for your interest in SDE at Acme. Unfortunately, your application was not selected."},
		{models.StatusOnHold, "Your application for SDE at Acme is currently on hold. We will update you soon."},
		{models.StatusApplied, "Your application for SDE at Acme has been received and is under review."},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.want, StatusMessage(tc.status, "SDE", "Acme"))
		})
	}
}
