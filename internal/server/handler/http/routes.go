package http

import (
	"net/http"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"github.com/atinyakov/ExpenseKeeper/internal/middleware"
	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/respond"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Expenses *ExpenseHandler
	Projects *ProjectHandler
}

// NewRouter constructs the HTTP handler serving the API under /api/v1.
//
// Routes:
//
//	GET    /api/v1/health
//	POST   /api/v1/auth/register
//	POST   /api/v1/auth/login
//	GET    /api/v1/users/me              (token)
//	GET    /api/v1/users                 (token, admin)
//	PATCH  /api/v1/users/{id}/role       (token, admin)
//	GET    /api/v1/expenses[/{id}]       (token)
//	POST   /api/v1/expenses              (token)
//	PATCH  /api/v1/expenses/{id}         (token)
//	DELETE /api/v1/expenses/{id}         (token)
//	GET    /api/v1/projects[/{id}]
//	POST   /api/v1/projects              (token, admin)
//	PATCH  /api/v1/projects/{id}         (token, admin)
//	DELETE /api/v1/projects/{id}         (token, admin)
//
// Middleware chain (applied in order):
//  1. RequestID
//  2. WithRequestLogging(logger)
//  3. Recover(logger)
//
// Routes taking a body also run RequireJSON, after authentication and the
// role check, so an anonymous caller is told 401 before anything else.
//
// Unknown paths and unsupported methods both answer 404 NOT_FOUND.
func NewRouter(
	h Handlers,
	tokens middleware.TokenVerifier,
	roles middleware.RoleLookup,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.Recover(logger))

	notFound := func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, logger, apperr.NotFound("Route not found"))
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	authenticate := middleware.Authenticate(tokens, logger)
	adminOnly := middleware.RequireRole(roles, models.RoleAdmin, logger)
	jsonBody := middleware.RequireJSON(logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", Health)

		r.With(jsonBody).Post("/auth/register", h.Auth.Register)
		r.With(jsonBody).Post("/auth/login", h.Auth.Login)

		r.Get("/projects", h.Projects.List)
		r.Get("/projects/{id}", h.Projects.Get)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/users/me", h.Users.Me)

			r.Get("/expenses", h.Expenses.List)
			r.With(jsonBody).Post("/expenses", h.Expenses.Create)
			r.Get("/expenses/{id}", h.Expenses.Get)
			r.With(jsonBody).Patch("/expenses/{id}", h.Expenses.Update)
			r.Delete("/expenses/{id}", h.Expenses.Delete)

			// Admin group: persisted role re-checked per request
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Get("/users", h.Users.List)
				r.With(jsonBody).Patch("/users/{id}/role", h.Users.SetRole)

				r.With(jsonBody).Post("/projects", h.Projects.Create)
				r.With(jsonBody).Patch("/projects/{id}", h.Projects.Update)
				r.Delete("/projects/{id}", h.Projects.Delete)
			})
		})
	})

	return r
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
