package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/docstore"
	"github.com/yigit/campusconnect/internal/pkg/identity"
)

func TestSession_LoadCreatesDefaultProfile(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	profiles := repositories.NewProfileRepository(store)
	id := &identity.Identity{UID: "u1", Email: "asha@college.edu"}

	s := New(profiles)
	require.NoError(t, s.Load(ctx, id, models.RoleStudent, true))
	require.True(t, s.Loaded())

	student, ok := s.Student()
	require.True(t, ok)
	assert.Equal(t, "asha", student.Name)
	assert.Equal(t, "Computer Science", student.Branch)

	_, ok = s.Manager()
	assert.False(t, ok)

	doc, err := store.Get(ctx, models.CollectionStudents, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2024", doc.Data["year"])
}

func TestSession_LoadWithoutCreate(t *testing.T) {
	ctx := context.Background()
	s := New(repositories.NewProfileRepository(docstore.NewMemoryStore()))

	err := s.Load(ctx, &identity.Identity{UID: "u1", Email: "a@b.c"}, models.RoleManager, false)
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	assert.False(t, s.Loaded())

	assert.ErrorIs(t, s.Load(ctx, nil, models.RoleManager, true), apperrors.ErrUnauthenticated)
}

func TestSession_RefreshAndClear(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	profiles := repositories.NewProfileRepository(store)
	id := &identity.Identity{UID: "u1", Email: "asha@college.edu", DisplayName: "Asha"}

	s := New(profiles)
	assert.ErrorIs(t, s.Refresh(ctx), ErrNotLoaded)

	require.NoError(t, s.Load(ctx, id, models.RoleStudent, true))
	require.NoError(t, profiles.SetStudentApproved(ctx, "u1", true))

	student, _ := s.Student()
	assert.False(t, student.Approved, "cached profile is not live")

	require.NoError(t, s.Refresh(ctx))
	student, _ = s.Student()
	assert.True(t, student.Approved)
	assert.Equal(t, "Asha", s.ActorName())

	s.Clear()
	assert.False(t, s.Loaded())
	assert.Empty(t, s.ActorName())
}

func TestSession_Context(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := New(nil)
	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
