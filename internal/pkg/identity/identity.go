// Package identity authenticates visitors against stored credentials and
// carries the signed-in identity through request contexts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/campusconnect/internal/pkg/auth"
	"github.com/yigit/campusconnect/internal/pkg/docstore"
)

// AccountsCollection holds one credential document per identity.
const AccountsCollection = "accounts"

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

// Provider errors. Their messages are shown to the visitor verbatim.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrNoIdentity         = errors.New("no signed-in identity")
)

// Identity is an authenticated visitor.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Name returns the display name, falling back to the local part of the email.
func (i *Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}

// Provider is the identity service consumed by the session layer.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password, displayName string) (*Identity, error)
	// SignOut ends the identity carried by ctx.
	SignOut(ctx context.Context) error
	// Current returns the identity carried by ctx.
	Current(ctx context.Context) (*Identity, bool)
}

type contextKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity carried by ctx, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok && id != nil
}

type account struct {
	Email        string     `json:"email"`
	DisplayName  string     `json:"displayName"`
	PasswordHash string     `json:"passwordHash"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastSignIn   *time.Time `json:"lastSignInAt,omitempty"`
	LastSignOut  *time.Time `json:"lastSignOutAt,omitempty"`
}

// StoreProvider keeps bcrypt-hashed credentials in the document store.
type StoreProvider struct {
	store    docstore.Store
	logger   zerolog.Logger
	hashCost int
	now      func() time.Time
}

// Option configures a StoreProvider.
type Option func(*StoreProvider)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(p *StoreProvider) { p.hashCost = cost }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *StoreProvider) { p.now = now }
}

// NewStoreProvider creates a provider over store.
func NewStoreProvider(store docstore.Store, logger zerolog.Logger, opts ...Option) *StoreProvider {
	p := &StoreProvider{
		store:    store,
		logger:   logger,
		hashCost: auth.BcryptCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.hashCost < bcrypt.MinCost {
		p.hashCost = bcrypt.MinCost
	}
	return p
}

var _ Provider = (*StoreProvider)(nil)

// SignIn verifies the credentials and records the sign-in time.
func (p *StoreProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	doc, acct, err := p.findAccount(ctx, email)
	if err != nil {
		return nil, err
	}
	if doc == nil || !auth.CheckPassword(acct.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := p.now().UTC()
	if err := p.store.Update(ctx, AccountsCollection, doc.ID, map[string]any{"lastSignInAt": now}); err != nil {
		// The credentials were valid; a missed timestamp does not fail the sign-in.
		p.logger.Warn().Err(err).Str("uid", doc.ID).Msg("Failed to record sign-in time")
	}

	return &Identity{UID: doc.ID, Email: acct.Email, DisplayName: acct.DisplayName}, nil
}

// SignUp creates a new account. Emails are unique case-insensitively.
func (p *StoreProvider) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	existing, _, err := p.findAccount(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	hash, err := auth.HashPasswordWithCost(password, p.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := account{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
		CreatedAt:    p.now().UTC(),
	}
	uid, err := p.store.Create(ctx, AccountsCollection, acct)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return nil, ErrAccountExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	p.logger.Info().Str("uid", uid).Str("email", email).Msg("Account created")
	return &Identity{UID: uid, Email: email, DisplayName: acct.DisplayName}, nil
}

// SignOut records the sign-out of the identity carried by ctx.
func (p *StoreProvider) SignOut(ctx context.Context) error {
	id, ok := FromContext(ctx)
	if !ok {
		return ErrNoIdentity
	}
	err := p.store.Update(ctx, AccountsCollection, id.UID, map[string]any{"lastSignOutAt": p.now().UTC()})
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("failed to record sign-out: %w", err)
	}
	return nil
}

// Current returns the identity carried by ctx.
func (p *StoreProvider) Current(ctx context.Context) (*Identity, bool) {
	return FromContext(ctx)
}

func (p *StoreProvider) findAccount(ctx context.Context, email string) (*docstore.Document, *account, error) {
	docs, err := p.store.Query(ctx, AccountsCollection, []docstore.Filter{docstore.Where("email", email)}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil, nil
	}
	var acct account
	if err := docs[0].DataTo(&acct); err != nil {
		return nil, nil, err
	}
	return docs[0], &acct, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
