package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used in production.
const PasswordCost = 12

// PasswordHasher hashes and checks passwords with bcrypt.
type PasswordHasher struct {
	cost int
	// dummy is compared against when the account does not exist, so that
	// unknown emails cost the same as wrong passwords.
	dummy []byte
}

// NewPasswordHasher returns a hasher using the given bcrypt cost.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("no-such-account-placeholder"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &PasswordHasher{cost: cost, dummy: dummy}, nil
}

// Hash returns the salted bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Check reports whether password matches hash. A mismatch is not an error;
// only a corrupt hash is.
func (h *PasswordHasher) Check(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}

// Waste performs one comparison against a fixed hash and discards the result.
func (h *PasswordHasher) Waste(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
