package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/ExpenseKeeper/internal/models"
)

// PostgresProjectRepository stores shared projects in PostgreSQL.
type PostgresProjectRepository struct {
	DB *sql.DB
}

// NewPostgresProjectRepository creates a new PostgresProjectRepository.
func NewPostgresProjectRepository(db *sql.DB) *PostgresProjectRepository {
	return &PostgresProjectRepository{DB: db}
}

const projectColumns = `id, name, price_cents, created_at`

func scanProject(s scanner) (*models.Project, error) {
	var p models.Project
	if err := s.Scan(&p.ID, &p.Name, &p.PriceCents, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a project.
func (r *PostgresProjectRepository) CreateProject(ctx context.Context, in models.NewProject) (*models.Project, error) {
	p, err := scanProject(r.DB.QueryRowContext(ctx, `
		INSERT INTO projects (name, price_cents) VALUES ($1, $2)
		RETURNING `+projectColumns,
		in.Name, in.PriceCents))
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// GetProject fetches a project by id.
func (r *PostgresProjectRepository) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p, err := scanProject(r.DB.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// ListProjects returns one page of projects, newest first, with the total count.
func (r *PostgresProjectRepository) ListProjects(ctx context.Context, page models.Page) ([]models.Project, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return projects, total, nil
}

// UpdateProject applies a partial update; nil fields keep their value.
func (r *PostgresProjectRepository) UpdateProject(ctx context.Context, id int64, p models.ProjectPatch) (*models.Project, error) {
	out, err := scanProject(r.DB.QueryRowContext(ctx, `
		UPDATE projects SET
			name        = COALESCE($1, name),
			price_cents = COALESCE($2, price_cents)
		WHERE id = $3
		RETURNING `+projectColumns,
		p.Name, p.PriceCents, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update project: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return out, nil
}

// DeleteProject removes a project.
func (r *PostgresProjectRepository) DeleteProject(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete project: %w", ErrNotFound)
	}
	return nil
}
