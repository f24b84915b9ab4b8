package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/ExpenseKeeper/internal/models"
)

// PostgresExpenseRepository stores expenses in PostgreSQL. Every query is
// conjoined with the owner's id; there is no way to address an expense by
// id alone.
type PostgresExpenseRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresExpenseRepository creates a new PostgresExpenseRepository using the provided *sql.DB.
func NewPostgresExpenseRepository(db *sql.DB) *PostgresExpenseRepository {
	return &PostgresExpenseRepository{DB: db}
}

const expenseColumns = `id, user_id, amount_cents, description, occurred_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (*models.Expense, error) {
	var e models.Expense
	if err := s.Scan(&e.ID, &e.UserID, &e.AmountCents, &e.Description, &e.OccurredAt, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateExpense inserts an expense owned by owner.
func (r *PostgresExpenseRepository) CreateExpense(ctx context.Context, owner models.AccountID, in models.NewExpense) (*models.Expense, error) {
	e, err := scanExpense(r.DB.QueryRowContext(ctx, `
		INSERT INTO expenses (user_id, amount_cents, description, occurred_at)
		VALUES ($1, $2, $3, COALESCE($4, NOW()))
		RETURNING `+expenseColumns,
		owner, in.AmountCents, in.Description, in.OccurredAt))
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

// GetExpense fetches a single expense by id for the given owner.
func (r *PostgresExpenseRepository) GetExpense(ctx context.Context, owner models.AccountID, id int64) (*models.Expense, error) {
	e, err := scanExpense(r.DB.QueryRowContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get expense: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns one page of the owner's expenses, newest first, and
// the total number of expenses the owner has.
func (r *PostgresExpenseRepository) ListExpenses(ctx context.Context, owner models.AccountID, page models.Page) ([]models.Expense, int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM expenses WHERE user_id = $1 AND deleted_at IS NULL
	`, owner).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, owner, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, total, nil
}

// UpdateExpense applies a partial update to the owner's expense.
func (r *PostgresExpenseRepository) UpdateExpense(ctx context.Context, owner models.AccountID, id int64, p models.ExpensePatch) (*models.Expense, error) {
	e, err := scanExpense(r.DB.QueryRowContext(ctx, `
		UPDATE expenses SET
			amount_cents = COALESCE($1, amount_cents),
			description  = COALESCE($2, description),
			occurred_at  = COALESCE($3, occurred_at)
		WHERE id = $4 AND user_id = $5 AND deleted_at IS NULL
		RETURNING `+expenseColumns,
		p.AmountCents, p.Description, p.OccurredAt, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update expense: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return e, nil
}

// DeleteExpense soft-deletes the owner's expense. The row is purged later by
// db.StartSoftDeleteCleaner.
func (r *PostgresExpenseRepository) DeleteExpense(ctx context.Context, owner models.AccountID, id int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE expenses SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, id, owner)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete expense: %w", ErrNotFound)
	}
	return nil
}

// PurgeDeleted permanently removes expenses soft-deleted before cutoff.
func (r *PostgresExpenseRepository) PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM expenses
		 WHERE deleted_at IS NOT NULL
		   AND deleted_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge expenses: %w", err)
	}
	return res.RowsAffected()
}
