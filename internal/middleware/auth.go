// Package middleware provides HTTP middlewares for authentication,
// role authorization and request logging.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/respond"
	"go.uber.org/zap"
)

type ctxKey string

const accountKey ctxKey = "account"

var bearerPattern = regexp.MustCompile(`(?i)^bearer\s+(\S+)$`)

// TokenVerifier resolves a bearer token to the account it was issued for.
type TokenVerifier interface {
	Verify(token string) (models.AccountID, error)
}

// Authenticate is a middleware that requires a valid bearer token.
//
// The Authorization header must read "Bearer <token>" (scheme keyword in any
// case, surrounding whitespace ignored). A missing or malformed header and a
// token that fails verification are both answered with 401 before next runs,
// with different messages. The reason a token was rejected is only logged.
//
// On success the verified account id is stored in the request context; no
// storage is consulted at this stage.
func Authenticate(tokens TokenVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := bearerPattern.FindStringSubmatch(strings.TrimSpace(r.Header.Get("Authorization")))
			if m == nil {
				respond.Error(w, log, apperr.Unauthorized("Missing bearer token", nil))
				return
			}

			id, err := tokens.Verify(m[1])
			if err != nil {
				log.Debug("token rejected", zap.Error(err))
				respond.Error(w, log, apperr.Unauthorized("Invalid or expired token", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), id)))
		})
	}
}

// WithAccountID returns a copy of ctx carrying the authenticated account id.
func WithAccountID(ctx context.Context, id models.AccountID) context.Context {
	return context.WithValue(ctx, accountKey, id)
}

// AccountIDFromContext extracts the authenticated account id from the
// request context. The boolean is false when no identity was established.
func AccountIDFromContext(ctx context.Context) (models.AccountID, bool) {
	id, ok := ctx.Value(accountKey).(models.AccountID)
	return id, ok && id.Valid()
}
