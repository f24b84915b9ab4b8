// Package auth issues and verifies signed access tokens and hashes account
// passwords.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenLifetime is the fixed validity window of an access token.
const TokenLifetime = time.Hour

var (
	// ErrInvalidToken is returned for every verification failure: bad
	// signature, expiry, malformed payload or subject. The wrapped cause is
	// only meant for logs.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret is returned when a TokenService is built without a key.
	ErrMissingSecret = errors.New("token signing secret is empty")
)

// TokenService signs and verifies HS256 access tokens whose subject is the
// account identifier.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService builds a TokenService for the given signing secret.
// An empty secret is a configuration error.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	s := &TokenService{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a signed token for id that expires after TokenLifetime.
func (s *TokenService) Issue(id models.AccountID) (string, error) {
	if !id.Valid() {
		return "", fmt.Errorf("issue token: invalid account id %d", id)
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and decodes its subject.
// The subject must be a strictly positive decimal integer even when the
// signature is valid.
func (s *TokenService) Verify(token string) (models.AccountID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q is not an integer", ErrInvalidToken, claims.Subject)
	}
	if !models.AccountID(id).Valid() {
		return 0, fmt.Errorf("%w: subject %d is not positive", ErrInvalidToken, id)
	}
	return models.AccountID(id), nil
}
