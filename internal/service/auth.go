// Package service implements the business rules for accounts, expenses and
// projects, delegating persistence to repository interfaces and reporting
// failures as *apperr.Error values.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/repository"
)

const (
	// MinPasswordLength is the shortest password accepted at registration,
	// counted in characters.
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest password bcrypt can hash.
	MaxPasswordBytes = 72
)

// AuthRepository defines the account persistence operations required by
// AuthService.
type AuthRepository interface {
	// CreateAccount stores a new account. It returns repository.ErrEmailTaken
	// when the email is already registered.
	CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error)
	// GetCredentials returns repository.ErrNotFound for an unknown email.
	GetCredentials(ctx context.Context, email string) (*models.Credentials, error)
	GetAccount(ctx context.Context, id models.AccountID) (*models.Account, error)
	GetRole(ctx context.Context, id models.AccountID) (models.Role, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	SetRole(ctx context.Context, id models.AccountID, role models.Role) (*models.Account, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) (bool, error)
	// Waste performs a comparison whose result is discarded, so that a login
	// for an unknown email costs as much as one with a wrong password.
	Waste(password string)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(id models.AccountID) (string, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string          `json:"token"`
	User  *models.Account `json:"user"`
}

// AuthService implements registration, login and account administration.
type AuthService struct {
	repo   AuthRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo AuthRepository, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens}
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a standard account. A second registration of the same
// normalized email fails with CONFLICT; the store's unique constraint is the
// only arbiter, there is no lookup beforehand.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.Account, error) {
	email = NormalizeEmail(email)
	var details []apperr.FieldError
	if email == "" {
		details = append(details, apperr.FieldError{Field: "email", Message: "is required"})
	}
	switch {
	case utf8.RuneCountInString(password) < MinPasswordLength:
		details = append(details, apperr.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength),
		})
	case len(password) > MaxPasswordBytes:
		details = append(details, apperr.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes),
		})
	}
	if len(details) > 0 {
		return nil, apperr.Validation("Invalid request body", details...)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	account, err := s.repo.CreateAccount(ctx, email, hash)
	if errors.Is(err, repository.ErrEmailTaken) {
		return nil, apperr.Conflict("Email already in use", err)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return account, nil
}

// Login checks the credentials and issues a token. An unknown email and a
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	creds, err := s.repo.GetCredentials(ctx, NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.Waste(password)
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	ok, err := s.hasher.Check(creds.PasswordHash, password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, invalidCredentials()
	}

	token, err := s.tokens.Issue(creds.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := creds.Account
	return &LoginResult{Token: token, User: &user}, nil
}

func invalidCredentials() error {
	return apperr.Unauthorized("Invalid credentials", nil)
}

// Me returns the caller's account. An account deleted after its token was
// issued is reported as UNAUTHORIZED.
func (s *AuthService) Me(ctx context.Context, id models.AccountID) (*models.Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("User not found", err)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return account, nil
}

// RoleOf reads the persisted role of an account for the role guard.
func (s *AuthService) RoleOf(ctx context.Context, id models.AccountID) (models.Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperr.Unauthorized("Account not found", err)
	}
	if err != nil {
		return "", apperr.Internal(err)
	}
	return role, nil
}

// ListAccounts returns every account ordered by id.
func (s *AuthService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return accounts, nil
}

// SetRole changes the role of an account.
func (s *AuthService) SetRole(ctx context.Context, id models.AccountID, role models.Role) (*models.Account, error) {
	if !role.Valid() {
		return nil, apperr.Validation("Invalid request body", apperr.FieldError{
			Field:   "role",
			Message: "must be one of standard, admin",
		})
	}
	account, err := s.repo.SetRole(ctx, id, role)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return account, nil
}
