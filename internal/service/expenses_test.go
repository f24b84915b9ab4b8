package service

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseService_Isolation(t *testing.T) {
	svc := NewExpenseService(repository.NewMemoryStore())
	ctx := context.Background()
	const alice, bob models.AccountID = 1, 2

	mine, err := svc.Create(ctx, alice, models.NewExpense{AmountCents: 100, Description: "alice"})
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, bob, models.NewExpense{AmountCents: 200, Description: "bob"})
	require.NoError(t, err)
	assert.Equal(t, alice, mine.UserID)

	list, total, err := svc.List(ctx, alice, models.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = svc.Get(ctx, alice, theirs.ID)
	notFound := apperr.As(err)
	assert.Equal(t, apperr.CodeNotFound, notFound.Code)
	assert.Equal(t, "Expense not found", notFound.Message)

	desc := "hijacked"
	_, err = svc.Update(ctx, alice, theirs.ID, models.ExpensePatch{Description: &desc})
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	err = svc.Delete(ctx, alice, theirs.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	// A record that never existed looks exactly the same.
	_, missingErr := svc.Get(ctx, alice, 9999)
	assert.Equal(t, notFound.Message, apperr.As(missingErr).Message)

	got, err := svc.Get(ctx, bob, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Description)
}

func TestExpenseService_UpdateAndDelete(t *testing.T) {
	svc := NewExpenseService(repository.NewMemoryStore())
	ctx := context.Background()

	e, err := svc.Create(ctx, 1, models.NewExpense{AmountCents: 100, Description: "tea"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, e.ID, models.ExpensePatch{})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	amount := int64(250)
	updated, err := svc.Update(ctx, 1, e.ID, models.ExpensePatch{AmountCents: &amount})
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.AmountCents)
	assert.Equal(t, "tea", updated.Description)

	require.NoError(t, svc.Delete(ctx, 1, e.ID))
	_, err = svc.Get(ctx, 1, e.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestExpenseService_RequiresOwner(t *testing.T) {
	svc := NewExpenseService(repository.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, 0, models.NewExpense{AmountCents: 1, Description: "x"})
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
	_, _, err = svc.List(ctx, -1, models.Page{Page: 1, Limit: 1})
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

type failingExpenses struct{ ExpenseRepository }

func (failingExpenses) GetExpense(context.Context, models.AccountID, int64) (*models.Expense, error) {
	return nil, errors.New("disk on fire")
}

func TestExpenseService_StorageFailureIsInternal(t *testing.T) {
	svc := NewExpenseService(failingExpenses{})
	_, err := svc.Get(context.Background(), 1, 1)
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}
