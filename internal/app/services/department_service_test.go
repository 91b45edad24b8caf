package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

func TestDepartmentService_Overview(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, defaultOptions())
	mgr := h.manager(t, "priya@college.edu", "Priya")
	acme := h.drive(t, mgr, "Acme", 0)
	globex := h.drive(t, mgr, "Globex", 0)
	h.drive(t, mgr, "Acme", 0)

	head := h.hod(t, "head@college.edu", "Computer Science")
	asha := h.student(t, "asha@college.edu", "Computer Science", 8)
	h.student(t, "ravi@college.edu", "Computer Science", 8)
	h.student(t, "meera@college.edu", "Computer Science", 8)
	h.student(t, "kiran@college.edu", "Mechanical", 8)

	a1, err := h.svc.ApplicationService.Submit(ctx, asha, acme)
	require.NoError(t, err)
	a2, err := h.svc.ApplicationService.Submit(ctx, asha, globex)
	require.NoError(t, err)
	for _, id := range []string{a1.ID, a2.ID} {
		_, err := h.svc.StatusWorkflow.Transition(ctx, id, "Approved", mgr)
		require.NoError(t, err)
	}

	overview, err := h.svc.DepartmentService.Overview(ctx, head)
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", overview.Department)
	assert.Equal(t, 3, overview.Students)
	assert.Equal(t, 3, overview.PendingRequests)
	assert.Equal(t, 1, overview.PlacedStudents)
	assert.InDelta(t, 33.3, overview.PlacementRate, 0.001)
	assert.Equal(t, 2, overview.ActiveCompanies)
}

func TestDepartmentService_OverviewRequiresHOD(t *testing.T) {
	h := newHarness(t, defaultOptions())
	s := h.student(t, "asha@college.edu", "Computer Science", 8)

	_, err := h.svc.DepartmentService.Overview(context.Background(), s)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
