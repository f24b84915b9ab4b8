package middleware

import (
	"mime"
	"net/http"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"github.com/atinyakov/ExpenseKeeper/internal/respond"
	"go.uber.org/zap"
)

// RequireJSON rejects requests carrying a body whose Content-Type is not
// application/json with a VALIDATION_ERROR envelope. Requests without a body
// pass through.
func RequireJSON(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				respond.Error(w, log, apperr.Validation("Content-Type must be application/json"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
