package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

func TestApprovalService_ListPendingUsesOwnDepartment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	cs := h.hod(t, "cs-head@college.edu", "Computer Science")
	mech := h.hod(t, "mech-head@college.edu", "Mechanical")
	h.student(t, "asha@college.edu", "Computer Science", 8)
	h.student(t, "ravi@college.edu", "Mechanical", 7)
	h.student(t, "meera@college.edu", "Mechanical", 9)

	csPending, err := h.svc.ApprovalService.ListPending(ctx, cs)
	require.NoError(t, err)
	require.Len(t, csPending, 1)
	assert.Equal(t, "asha@college.edu", csPending[0].StudentEmail)

	mechPending, err := h.svc.ApprovalService.ListPending(ctx, mech)
	require.NoError(t, err)
	assert.Len(t, mechPending, 2)
}

func TestApprovalService_ApproveFlipsProfile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	head := h.hod(t, "head@college.edu", "Computer Science")
	s := h.student(t, "asha@college.edu", "Computer Science", 8)

	pending, err := h.svc.ApprovalService.ListPending(ctx, head)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	req, err := h.svc.ApprovalService.Approve(ctx, head, pending[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, req.Status)
	assert.Equal(t, "head", req.ApprovedBy)
	assert.NotNil(t, req.ApprovedAt)

	stored, err := h.repos.ApprovalRequestRepository.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, stored.Status)
	assert.Equal(t, "head", stored.ApprovedBy)

	require.NoError(t, s.Refresh(ctx))
	student, _ := s.Student()
	assert.True(t, student.Approved)

	_, err = h.svc.ApprovalService.Approve(ctx, head, req.ID)
	require.ErrorIs(t, err, apperrors.ErrRequestAlreadyResolved)
	_, err = h.svc.ApprovalService.Reject(ctx, head, req.ID)
	require.ErrorIs(t, err, apperrors.ErrRequestAlreadyResolved)
}

func TestApprovalService_Reject(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	head := h.hod(t, "head@college.edu", "Computer Science")
	s := h.student(t, "asha@college.edu", "Computer Science", 8)

	pending, err := h.svc.ApprovalService.ListPending(ctx, head)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	req, err := h.svc.ApprovalService.Reject(ctx, head, pending[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, req.Status)
	assert.Equal(t, "head", req.RejectedBy)
	assert.NotNil(t, req.RejectedAt)
	assert.Empty(t, req.ApprovedBy)

	require.NoError(t, s.Refresh(ctx))
	student, _ := s.Student()
	assert.False(t, student.Approved)

	remaining, err := h.svc.ApprovalService.ListPending(ctx, head)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestApprovalService_OtherDepartmentForbidden(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	cs := h.hod(t, "cs-head@college.edu", "Computer Science")
	mech := h.hod(t, "mech-head@college.edu", "Mechanical")
	h.student(t, "asha@college.edu", "Computer Science", 8)

	pending, err := h.svc.ApprovalService.ListPending(ctx, cs)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = h.svc.ApprovalService.Approve(ctx, mech, pending[0].ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = h.svc.ApprovalService.Approve(ctx, cs, "missing")
	require.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestApprovalService_RequiresHOD(t *testing.T) {
	h := newHarness(t, defaultOptions())
	mgr := h.manager(t, "priya@college.edu", "Priya")

	_, err := h.svc.ApprovalService.ListPending(context.Background(), mgr)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestApprovalService_PartialApproval(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	head := h.hod(t, "head@college.edu", "Computer Science")
	s := h.student(t, "asha@college.edu", "Computer Science", 8)

	pending, err := h.svc.ApprovalService.ListPending(ctx, head)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	h.store.failUpdates(models.CollectionStudents, errors.New("write refused"))

	req, err := h.svc.ApprovalService.Approve(ctx, head, pending[0].ID)
	require.ErrorIs(t, err, apperrors.ErrApprovalPartiallyApplied)
	require.NotNil(t, req)
	assert.Equal(t, models.ApprovalApproved, req.Status)

	stored, err := h.repos.ApprovalRequestRepository.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, stored.Status)

	require.NoError(t, s.Refresh(ctx))
	student, _ := s.Student()
	assert.False(t, student.Approved)
}
