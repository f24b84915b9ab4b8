package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/respond"
	"go.uber.org/zap"
)

// UserService defines the account operations required by UserHandler.
type UserService interface {
	Me(ctx context.Context, id models.AccountID) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	SetRole(ctx context.Context, id models.AccountID, role models.Role) (*models.Account, error)
}

// UserHandler serves the caller's own account and the admin account list.
type UserHandler struct {
	UserService UserService
	Log         *zap.Logger
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := callerID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	account, err := h.UserService.Me(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, account)
}

// List handles GET /users. Admin only; the role guard runs before it.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.UserService.ListAccounts(r.Context())
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, accounts)
}

// SetRole handles PATCH /users/{id}/role with body {"role": "..."}.
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	account, err := h.UserService.SetRole(r.Context(), models.AccountID(id), req.Role)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, account)
}
