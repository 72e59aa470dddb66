package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// TokenTypeBearer is the token type reported to clients.
const TokenTypeBearer = "Bearer"

// IdentityStore resolves stored identities. Lookups of absent identities
// return an error matching models.ErrNotFound.
type IdentityStore interface {
	// FindByLogin looks a user up by username or by registered email.
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenPair is the result of a login or refresh. RefreshToken is empty for
// refresh results because refresh tokens are not rotated.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SessionFlow runs login, refresh and request authentication on top of the
// hasher, the token service and the identity store.
type SessionFlow struct {
	store  IdentityStore
	hasher PasswordHasher
	tokens *TokenService

	dummyOnce sync.Once
	dummyHash string
}

// NewSessionFlow wires a SessionFlow.
func NewSessionFlow(store IdentityStore, hasher PasswordHasher, tokens *TokenService) *SessionFlow {
	return &SessionFlow{store: store, hasher: hasher, tokens: tokens}
}

// Login verifies credentials and issues an access and a refresh token. An
// unknown login and a wrong password both fail with the same
// models.ErrInvalidCredentials.
func (f *SessionFlow) Login(ctx context.Context, login, password string) (_ *TokenPair, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.Login")
	defer func() { f.record(ctx, "login", err); observability.EndSpan(span, err) }()

	user, err := f.store.FindByLogin(ctx, login)
	switch {
	case errors.Is(err, models.ErrNotFound):
		// Burn a comparable amount of time so absent users are not observable.
		f.hasher.Verify(password, f.dummy())
		return nil, models.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	if !f.hasher.Verify(password, user.Password) {
		return nil, models.ErrInvalidCredentials
	}
	span.SetAttributes(attribute.Int64("user.id", int64(user.ID)))

	access, err := f.tokens.IssueAccess(user.Username, user.Roles())
	if err != nil {
		return nil, err
	}
	refresh, err := f.tokens.IssueRefresh(user.Username)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(f.tokens.AccessTTL().Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token bound to the
// same subject. Every failure is reported as models.ErrInvalidToken.
func (f *SessionFlow) Refresh(ctx context.Context, refreshToken string) (_ *TokenPair, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.Refresh")
	defer func() { f.record(ctx, "refresh", err); observability.EndSpan(span, err) }()

	claims, err := f.tokens.Validate(refreshToken, RefreshToken)
	if err != nil {
		return nil, invalidToken(err)
	}

	user, err := f.store.FindByUsername(ctx, claims.Subject)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return nil, invalidToken(err)
	case err != nil:
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	access, err := f.tokens.IssueAccess(user.Username, user.Roles())
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken: access.Token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(f.tokens.AccessTTL().Seconds()),
	}, nil
}

// Authenticate validates an access token and resolves its subject to a
// current identity. Token failures keep their specific kind; a missing token
// or an unknown subject is models.ErrUnauthenticated.
func (f *SessionFlow) Authenticate(ctx context.Context, accessToken string) (_ *Identity, err error) {
	defer func() { f.record(ctx, "authenticate", err) }()

	if accessToken == "" {
		return nil, models.ErrUnauthenticated
	}

	claims, err := f.tokens.Validate(accessToken, AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := f.store.FindByUsername(ctx, claims.Subject)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return nil, models.ErrUnauthenticated
	case err != nil:
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	return &Identity{ID: user.ID, Username: user.Username, Roles: claims.Roles}, nil
}

func (f *SessionFlow) dummy() string {
	f.dummyOnce.Do(func() {
		f.dummyHash, _ = f.hasher.Hash("borlas-timing-equalizer")
	})
	return f.dummyHash
}

func (f *SessionFlow) record(ctx context.Context, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = models.CodeOf(err)
		observability.Logger.WarnContext(ctx, "auth operation failed",
			slog.String("operation", operation),
			slog.String("code", outcome),
		)
	}
	observability.AuthEvents.WithLabelValues(operation, outcome).Inc()
}

func invalidToken(cause error) error {
	return &models.AppError{Code: models.CodeInvalidToken, Message: "invalid refresh token", Err: cause}
}
