package middleware

import (
	"fmt"
	"net/http"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"github.com/atinyakov/ExpenseKeeper/internal/respond"
	"go.uber.org/zap"
)

// Recover turns a panic in a handler into a logged INTERNAL_ERROR envelope.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				log.Error("handler panicked", zap.Any("panic", rvr), zap.Stack("stack"))
				respond.Error(w, nil, apperr.Internal(fmt.Errorf("panic: %v", rvr)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
