package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/respond"
	"go.uber.org/zap"
)

// errNoIdentity means a role guard was mounted without Authenticate in front.
var errNoIdentity = errors.New("role guard reached without an authenticated identity")

// RoleLookup reads an account's currently persisted role. A vanished
// account must be reported as an apperr UNAUTHORIZED error.
type RoleLookup interface {
	RoleOf(ctx context.Context, id models.AccountID) (models.Role, error)
}

// RequireRole builds a middleware that lets a request through only when the
// caller's persisted role equals required. The role is read from storage on
// every request, so a role change takes effect for tokens already issued.
func RequireRole(lookup RoleLookup, required models.Role, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := AccountIDFromContext(r.Context())
			if !ok {
				respond.Error(w, log, apperr.Internal(errNoIdentity))
				return
			}

			role, err := lookup.RoleOf(r.Context(), id)
			if err != nil {
				respond.Error(w, log, err)
				return
			}
			if role != required {
				respond.Error(w, log, apperr.Forbidden("Insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
