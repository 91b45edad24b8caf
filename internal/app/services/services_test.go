package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/app/session"
	"github.com/yigit/campusconnect/internal/pkg/auth"
	"github.com/yigit/campusconnect/internal/pkg/docstore"
	"github.com/yigit/campusconnect/internal/pkg/identity"
	"github.com/yigit/campusconnect/internal/pkg/notify"
)

// testClock advances by one second on every read unless pinned
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *testClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// faultyStore fails writes to chosen collections
type faultyStore struct {
	docstore.Store

	mu         sync.Mutex
	failUpdate map[string]error
}

func newFaultyStore(inner docstore.Store) *faultyStore {
	return &faultyStore{Store: inner, failUpdate: make(map[string]error)}
}

func (f *faultyStore) failUpdates(collection string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpdate[collection] = err
}

func (f *faultyStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	f.mu.Lock()
	err := f.failUpdate[collection]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Update(ctx, collection, id, fields)
}

type harness struct {
	store   *faultyStore
	repos   *repositories.Repositories
	channel *notify.SimulatedChannel
	clock   *testClock
	svc     *Services
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	clock := newTestClock()
	opts.Now = clock.now

	store := newFaultyStore(docstore.NewMemoryStore(docstore.WithClock(clock.now)))
	t.Cleanup(func() { _ = store.Close() })

	logger := zerolog.Nop()
	repos := repositories.NewRepositories(store)
	provider := identity.NewStoreProvider(store, logger, identity.WithHashCost(4), identity.WithClock(clock.now))
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "campusconnect-test",
	})
	channel := notify.NewSimulatedChannel(logger)

	return &harness{
		store:   store,
		repos:   repos,
		channel: channel,
		clock:   clock,
		svc:     NewServices(repos, provider, jwtService, channel, opts, logger),
	}
}

func defaultOptions() Options {
	return Options{CreateProfileOnSignIn: true}
}

func (h *harness) signUp(t *testing.T, req dto.SignUpRequest) *AuthResult {
	t.Helper()
	if req.Password == "" {
		req.Password = "secret1"
	}
	res, err := h.svc.AuthService.SignUp(context.Background(), &req)
	require.NoError(t, err)
	return res
}

func (h *harness) student(t *testing.T, email, department string, cgpa float64) *session.Session {
	t.Helper()
	return h.signUp(t, dto.SignUpRequest{
		Email:      email,
		Role:       "student",
		Department: department,
		CGPA:       &cgpa,
	}).Session
}

func (h *harness) manager(t *testing.T, email, name string) *session.Session {
	t.Helper()
	return h.signUp(t, dto.SignUpRequest{Email: email, Role: "manager", Name: name}).Session
}

func (h *harness) hod(t *testing.T, email, department string) *session.Session {
	t.Helper()
	return h.signUp(t, dto.SignUpRequest{Email: email, Role: "hod", Department: department}).Session
}

func (h *harness) drive(t *testing.T, mgr *session.Session, company string, threshold float64) string {
	t.Helper()
	d, err := h.svc.DriveService.CreateDrive(context.Background(), mgr, &dto.CreateDriveRequest{
		CompanyName:    company,
		RoleOffered:    "Software Engineer",
		SalaryOffered:  "12",
		JobDescription: "Build things",
		Location:       "Pune",
		CGPACriteria:   &threshold,
	})
	require.NoError(t, err)
	return d.ID
}
