package service

import (
	"context"
	"errors"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/repository"
)

// ExpenseRepository defines owner-scoped expense persistence. Every method
// takes the owner explicitly and answers repository.ErrNotFound for
// expenses that are missing or belong to someone else.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, owner models.AccountID, in models.NewExpense) (*models.Expense, error)
	GetExpense(ctx context.Context, owner models.AccountID, id int64) (*models.Expense, error)
	ListExpenses(ctx context.Context, owner models.AccountID, page models.Page) ([]models.Expense, int, error)
	UpdateExpense(ctx context.Context, owner models.AccountID, id int64, p models.ExpensePatch) (*models.Expense, error)
	DeleteExpense(ctx context.Context, owner models.AccountID, id int64) error
}

var errNoOwner = errors.New("expense operation without an authenticated owner")

// ExpenseService implements expense operations on behalf of one owner.
type ExpenseService struct {
	repo ExpenseRepository
}

// NewExpenseService constructs an ExpenseService.
func NewExpenseService(repo ExpenseRepository) *ExpenseService {
	return &ExpenseService{repo: repo}
}

func expenseErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Expense not found")
	}
	return apperr.Internal(err)
}

// Create stores a new expense owned by owner.
func (s *ExpenseService) Create(ctx context.Context, owner models.AccountID, in models.NewExpense) (*models.Expense, error) {
	if !owner.Valid() {
		return nil, apperr.Internal(errNoOwner)
	}
	e, err := s.repo.CreateExpense(ctx, owner, in)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return e, nil
}

// Get returns the owner's expense, or NOT_FOUND when it belongs to someone else.
func (s *ExpenseService) Get(ctx context.Context, owner models.AccountID, id int64) (*models.Expense, error) {
	if !owner.Valid() {
		return nil, apperr.Internal(errNoOwner)
	}
	e, err := s.repo.GetExpense(ctx, owner, id)
	if err != nil {
		return nil, expenseErr(err)
	}
	return e, nil
}

// List returns a page of the owner's expenses and the owner's total count.
func (s *ExpenseService) List(ctx context.Context, owner models.AccountID, page models.Page) ([]models.Expense, int, error) {
	if !owner.Valid() {
		return nil, 0, apperr.Internal(errNoOwner)
	}
	list, total, err := s.repo.ListExpenses(ctx, owner, page)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

// Update applies a non-empty partial update to the owner's expense.
func (s *ExpenseService) Update(ctx context.Context, owner models.AccountID, id int64, p models.ExpensePatch) (*models.Expense, error) {
	if !owner.Valid() {
		return nil, apperr.Internal(errNoOwner)
	}
	if p.Empty() {
		return nil, apperr.Validation("At least one field must be provided")
	}
	e, err := s.repo.UpdateExpense(ctx, owner, id, p)
	if err != nil {
		return nil, expenseErr(err)
	}
	return e, nil
}

// Delete removes the owner's expense.
func (s *ExpenseService) Delete(ctx context.Context, owner models.AccountID, id int64) error {
	if !owner.Valid() {
		return apperr.Internal(errNoOwner)
	}
	if err := s.repo.DeleteExpense(ctx, owner, id); err != nil {
		return expenseErr(err)
	}
	return nil
}
