package http

import (
	"context"
	"net/http"
	"time"

	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/respond"
	"go.uber.org/zap"
)

const maxDescriptionLength = 200

// ExpenseService defines the owner-scoped expense operations required by
// ExpenseHandler.
type ExpenseService interface {
	Create(ctx context.Context, owner models.AccountID, in models.NewExpense) (*models.Expense, error)
	Get(ctx context.Context, owner models.AccountID, id int64) (*models.Expense, error)
	List(ctx context.Context, owner models.AccountID, page models.Page) ([]models.Expense, int, error)
	Update(ctx context.Context, owner models.AccountID, id int64, p models.ExpensePatch) (*models.Expense, error)
	Delete(ctx context.Context, owner models.AccountID, id int64) error
}

// ExpenseHandler serves the caller's expenses. The owner of every
// operation is the authenticated caller.
type ExpenseHandler struct {
	ExpenseService ExpenseService
	Log            *zap.Logger
}

// expenseRequest is the body of create and patch. A user_id sent by the
// client is not part of it and is dropped on decode.
type expenseRequest struct {
	AmountCents *int64  `json:"amount_cents"`
	Description *string `json:"description"`
	OccurredAt  *string `json:"occurred_at"`
}

func (req expenseRequest) validate(partial bool) (models.ExpensePatch, error) {
	var (
		p    models.ExpensePatch
		errs fieldErrors
	)

	if req.AmountCents != nil {
		if *req.AmountCents <= 0 {
			errs.add("amount_cents", "must be a positive integer")
		}
		p.AmountCents = req.AmountCents
	} else if !partial {
		errs.add("amount_cents", "is required")
	}

	if req.Description != nil {
		p.Description = trimmed(req.Description)
		checkLength(&errs, "description", *p.Description, 1, maxDescriptionLength)
	} else if !partial {
		errs.add("description", "is required")
	}

	if req.OccurredAt != nil {
		t, err := time.Parse(time.RFC3339, *req.OccurredAt)
		if err != nil {
			errs.add("occurred_at", "must be an RFC 3339 timestamp")
		}
		p.OccurredAt = &t
	}

	if err := errs.err(); err != nil {
		return models.ExpensePatch{}, err
	}
	return p, nil
}

// List handles GET /expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	list, total, err := h.ExpenseService.List(r.Context(), owner, page)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.List(w, list, respond.Meta{Page: page.Page, Limit: page.Limit, Total: total})
}

// Get handles GET /expenses/{id}.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	e, err := h.ExpenseService.Get(r.Context(), owner, id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, e)
}

// Create handles POST /expenses.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	p, err := req.validate(false)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	e, err := h.ExpenseService.Create(r.Context(), owner, models.NewExpense{
		AmountCents: *p.AmountCents,
		Description: *p.Description,
		OccurredAt:  p.OccurredAt,
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, e)
}

// Update handles PATCH /expenses/{id}.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	p, err := req.validate(true)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	e, err := h.ExpenseService.Update(r.Context(), owner, id, p)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, e)
}

// Delete handles DELETE /expenses/{id}.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	if err := h.ExpenseService.Delete(r.Context(), owner, id); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.NoContent(w)
}
