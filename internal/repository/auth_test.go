package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/lib/pq"
)

func setupAuthMock(t *testing.T) (*PostgresAuthRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresAuthRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

var accountCols = []string{"id", "email", "role", "created_at"}

func TestCreateAccount_Success(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, password_hash) VALUES ($1, $2)`)).
		WithArgs("u1@example.com", "hash").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(int64(1), "u1@example.com", "standard", created))

	a, err := repo.CreateAccount(context.Background(), "u1@example.com", "hash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID != 1 || a.Email != "u1@example.com" || a.Role != models.RoleStandard || !a.CreatedAt.Equal(created) {
		t.Errorf("unexpected account: %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateAccount_UniqueViolation(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("dup@example.com", "hash").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := repo.CreateAccount(context.Background(), "dup@example.com", "hash")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateAccount_OtherConstraintIsNotConflict(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("x@example.com", "hash").
		WillReturnError(&pq.Error{Code: "23514"})

	_, err := repo.CreateAccount(context.Background(), "x@example.com", "hash")
	if err == nil || errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected generic error, got %v", err)
	}
}

func TestGetCredentials(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	query := regexp.QuoteMeta(`SELECT id, email, role, created_at, password_hash FROM users WHERE email = $1`)
	mock.ExpectQuery(query).
		WithArgs("u1@example.com").
		WillReturnRows(sqlmock.NewRows(append(accountCols, "password_hash")).
			AddRow(int64(3), "u1@example.com", "admin", time.Now(), "$2a$hash"))
	mock.ExpectQuery(query).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(append(accountCols, "password_hash")))

	c, err := repo.GetCredentials(context.Background(), "u1@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != 3 || c.PasswordHash != "$2a$hash" || c.Role != models.RoleAdmin {
		t.Errorf("unexpected credentials: %+v", c)
	}

	_, err = repo.GetCredentials(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, role, created_at FROM users WHERE id = $1`)).
		WithArgs(models.AccountID(99)).
		WillReturnRows(sqlmock.NewRows(accountCols))

	_, err := repo.GetAccount(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRole(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	query := regexp.QuoteMeta(`SELECT role FROM users WHERE id = $1`)
	mock.ExpectQuery(query).WithArgs(models.AccountID(1)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))
	mock.ExpectQuery(query).WithArgs(models.AccountID(2)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}))
	mock.ExpectQuery(query).WithArgs(models.AccountID(3)).
		WillReturnError(errors.New("conn lost"))

	role, err := repo.GetRole(context.Background(), 1)
	if err != nil || role != models.RoleAdmin {
		t.Errorf("GetRole(1) = %q, %v; want admin, nil", role, err)
	}
	if _, err := repo.GetRole(context.Background(), 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRole(2) error = %v; want ErrNotFound", err)
	}
	if _, err := repo.GetRole(context.Background(), 3); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("GetRole(3) error = %v; want generic error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListAccounts(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, role, created_at FROM users ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow(int64(1), "a@example.com", "admin", time.Now()).
			AddRow(int64(2), "b@example.com", "standard", time.Now()))

	accounts, err := repo.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 || accounts[1].Email != "b@example.com" {
		t.Errorf("unexpected accounts: %+v", accounts)
	}
}

func TestSetRole(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	query := regexp.QuoteMeta(`UPDATE users SET role = $1 WHERE id = $2`)
	mock.ExpectQuery(query).WithArgs(models.RoleAdmin, models.AccountID(4)).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(int64(4), "d@example.com", "admin", time.Now()))
	mock.ExpectQuery(query).WithArgs(models.RoleAdmin, models.AccountID(5)).
		WillReturnRows(sqlmock.NewRows(accountCols))

	a, err := repo.SetRole(context.Background(), 4, models.RoleAdmin)
	if err != nil || a.Role != models.RoleAdmin {
		t.Errorf("SetRole(4) = %+v, %v", a, err)
	}
	if _, err := repo.SetRole(context.Background(), 5, models.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetRole(5) error = %v; want ErrNotFound", err)
	}
}
