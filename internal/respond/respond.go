// Package respond writes JSON response bodies in the API's envelope format:
// {"data": ...} on success and {"error": {"code", "message"}} on failure.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"go.uber.org/zap"
)

// Meta carries pagination information for list responses.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type dataEnvelope struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

type errorBody struct {
	Code    apperr.Code         `json:"code"`
	Message string              `json:"message"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// JSON writes v wrapped in a data envelope with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	write(w, status, dataEnvelope{Data: v})
}

// List writes a data envelope with pagination metadata.
func List(w http.ResponseWriter, v any, meta Meta) {
	write(w, http.StatusOK, dataEnvelope{Data: v, Meta: &meta})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error classifies err and writes the error envelope. Internal errors are
// logged with their cause; the client only sees the generic message.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	e := apperr.As(err)
	if e.Code == apperr.CodeInternal && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	write(w, e.Code.HTTPStatus(), errorEnvelope{Error: errorBody{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}})
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
