// Package http provides the HTTP handlers and router of the expense
// service API.
package http

import (
	"context"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/respond"
	"github.com/atinyakov/ExpenseKeeper/internal/service"
	"go.uber.org/zap"
)

// AuthService defines the registration and login operations required by
// AuthHandler.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	AuthService AuthService
	Log         *zap.Logger
}

// credentialsRequest is the body of both register and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/register. It answers 201 with the new
// account, 400 for an invalid body and 409 when the email is taken.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	var errs fieldErrors
	if !validEmail(service.NormalizeEmail(req.Email)) {
		errs.add("email", "must be a valid email address")
	}
	switch {
	case utf8.RuneCountInString(req.Password) < service.MinPasswordLength:
		errs.add("password", "must be at least "+strconv.Itoa(service.MinPasswordLength)+" characters")
	case len(req.Password) > service.MaxPasswordBytes:
		errs.add("password", "must be at most "+strconv.Itoa(service.MaxPasswordBytes)+" bytes")
	}
	if err := errs.err(); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	account, err := h.AuthService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, account)
}

// Login handles POST /auth/login. It answers 200 with a token and the
// account, or 401 "Invalid credentials" whatever the reason.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	var errs fieldErrors
	if !validEmail(service.NormalizeEmail(req.Email)) {
		errs.add("email", "must be a valid email address")
	}
	if req.Password == "" {
		errs.add("password", "is required")
	}
	if err := errs.err(); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
