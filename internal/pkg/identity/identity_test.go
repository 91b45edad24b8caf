package identity

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/campusconnect/internal/pkg/docstore"
)

func newTestProvider() (*StoreProvider, *docstore.MemoryStore) {
	store := docstore.NewMemoryStore()
	return NewStoreProvider(store, zerolog.Nop(), WithHashCost(bcrypt.MinCost)), store
}

func TestStoreProvider_SignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider()

	created, err := p.SignUp(ctx, " Asha@College.edu ", "secret1", "Asha")
	require.NoError(t, err)
	assert.NotEmpty(t, created.UID)
	assert.Equal(t, "asha@college.edu", created.Email)

	signedIn, err := p.SignIn(ctx, "asha@college.edu", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.UID, signedIn.UID)
	assert.Equal(t, "Asha", signedIn.DisplayName)
}

func TestStoreProvider_SignUpErrors(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider()

	_, err := p.SignUp(ctx, "asha@college.edu", "secret1", "")
	require.NoError(t, err)

	_, err = p.SignUp(ctx, "ASHA@college.edu", "another1", "")
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = p.SignUp(ctx, "ravi@college.edu", "short", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = p.SignUp(ctx, "not-an-email", "secret1", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestStoreProvider_SignInRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider()

	_, err := p.SignUp(ctx, "asha@college.edu", "secret1", "")
	require.NoError(t, err)

	_, err = p.SignIn(ctx, "asha@college.edu", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@college.edu", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStoreProvider_CurrentAndSignOut(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProvider()

	_, ok := p.Current(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, p.SignOut(ctx), ErrNoIdentity)

	id, err := p.SignUp(ctx, "asha@college.edu", "secret1", "")
	require.NoError(t, err)

	ctx = WithIdentity(ctx, id)
	current, ok := p.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, id.UID, current.UID)

	require.NoError(t, p.SignOut(ctx))
	doc, err := store.Get(ctx, AccountsCollection, id.UID)
	require.NoError(t, err)
	assert.Contains(t, doc.Data, "lastSignOutAt")
}

func TestIdentity_Name(t *testing.T) {
	assert.Equal(t, "Asha", (&Identity{Email: "asha@college.edu", DisplayName: "Asha"}).Name())
	assert.Equal(t, "asha.k", (&Identity{Email: "asha.k@college.edu"}).Name())
}

// racingStore reports a unique violation as if another replica created the
// same account between the lookup and the insert.
type racingStore struct {
	docstore.Store
}

func (racingStore) Create(context.Context, string, any) (string, error) {
	return "", docstore.ErrAlreadyExists
}

func TestStoreProvider_SignUpLosesRace(t *testing.T) {
	p := NewStoreProvider(racingStore{Store: docstore.NewMemoryStore()}, zerolog.Nop(), WithHashCost(bcrypt.MinCost))

	_, err := p.SignUp(context.Background(), "asha@college.edu", "secret1", "")
	assert.ErrorIs(t, err, ErrAccountExists)
}
