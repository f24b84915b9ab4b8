// Package repository provides persistence implementations for accounts,
// expenses and projects.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when no row matches the query, including rows
	// that exist but belong to another account.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when an insert violates the unique email
	// constraint.
	ErrEmailTaken = errors.New("email already registered")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// PostgresAuthRepository implements account persistence using a PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateAccount inserts a new account with the default role. The email
// must already be normalized. A concurrent or repeated registration of the
// same email fails with ErrEmailTaken, decided by the unique constraint
// rather than by a prior lookup.
func (r *PostgresAuthRepository) CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash) VALUES ($1, $2)
		RETURNING id, email, role, created_at
	`, email, passwordHash).Scan(&a.ID, &a.Email, &a.Role, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create account: %w", ErrEmailTaken)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &a, nil
}

// GetCredentials fetches an account and its password hash by normalized email.
func (r *PostgresAuthRepository) GetCredentials(ctx context.Context, email string) (*models.Credentials, error) {
	var c models.Credentials
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, role, created_at, password_hash FROM users WHERE email = $1
	`, email).Scan(&c.ID, &c.Email, &c.Role, &c.CreatedAt, &c.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get credentials: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &c, nil
}

// GetAccount fetches the public fields of an account by id.
func (r *PostgresAuthRepository) GetAccount(ctx context.Context, id models.AccountID) (*models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, role, created_at FROM users WHERE id = $1
	`, id).Scan(&a.ID, &a.Email, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// GetRole reads the currently persisted role of an account.
func (r *PostgresAuthRepository) GetRole(ctx context.Context, id models.AccountID) (models.Role, error) {
	var role models.Role
	err := r.DB.QueryRowContext(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get role: %w", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// ListAccounts returns every account ordered by id.
func (r *PostgresAuthRepository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, email, role, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Role, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// SetRole changes an account's role and returns the updated account.
func (r *PostgresAuthRepository) SetRole(ctx context.Context, id models.AccountID, role models.Role) (*models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(ctx, `
		UPDATE users SET role = $1 WHERE id = $2
		RETURNING id, email, role, created_at
	`, role, id).Scan(&a.ID, &a.Email, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set role: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	return &a, nil
}
