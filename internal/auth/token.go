package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ChakCage/Borlas/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	// AccessToken authorizes API calls.
	AccessToken TokenKind = "access"
	// RefreshToken may only be exchanged for a new access token.
	RefreshToken TokenKind = "refresh"
)

// Claims is the decoded payload of a token. Subject holds the username.
type Claims struct {
	Kind  TokenKind `json:"kind"`
	Roles []string  `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenService.
type TokenConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuedToken is a signed token and the instant it stops being valid.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenService issues and validates HS256-signed tokens. It holds no mutable
// state: validity depends only on the signature and the clock.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService validates cfg and returns a ready TokenService.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	s := &TokenService{
		secret:     cfg.Secret,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AccessTTL returns the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccess signs a short-lived access token for subject carrying roles.
func (s *TokenService) IssueAccess(subject string, roles []string) (IssuedToken, error) {
	return s.issue(subject, AccessToken, roles, s.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for subject.
func (s *TokenService) IssueRefresh(subject string) (IssuedToken, error) {
	return s.issue(subject, RefreshToken, nil, s.refreshTTL)
}

func (s *TokenService) issue(subject string, kind TokenKind, roles []string, ttl time.Duration) (IssuedToken, error) {
	if subject == "" {
		return IssuedToken{}, errors.New("token subject is required")
	}

	now := s.now()
	claims := Claims{
		Kind:  kind,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return IssuedToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Validate verifies the signature of raw, then its expiry, then that it is of
// the expected kind. The returned errors match models.ErrTokenBadSignature,
// models.ErrTokenMalformed, models.ErrTokenExpired and
// models.ErrTokenKindMismatch.
func (s *TokenService) Validate(raw string, expected TokenKind) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if claims.Subject == "" {
		return nil, models.ErrTokenMalformed
	}
	if claims.Kind != expected {
		return nil, &models.AppError{
			Code:    models.CodeTokenKindMismatch,
			Message: fmt.Sprintf("expected %s token, got %q", expected, claims.Kind),
		}
	}
	return claims, nil
}

func classifyTokenError(err error) *models.AppError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &models.AppError{Code: models.CodeTokenMalformed, Message: "token malformed", Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &models.AppError{Code: models.CodeTokenBadSignature, Message: "token signature invalid", Err: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &models.AppError{Code: models.CodeTokenExpired, Message: "token expired", Err: err}
	default:
		return &models.AppError{Code: models.CodeTokenMalformed, Message: "token claims invalid", Err: err}
	}
}
