// Package main initializes and starts the expense service HTTP server,
// setting up configuration, logging, storage, services and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/ExpenseKeeper/internal/auth"
	"github.com/atinyakov/ExpenseKeeper/internal/config"
	"github.com/atinyakov/ExpenseKeeper/internal/db"
	"github.com/atinyakov/ExpenseKeeper/internal/logger"
	"github.com/atinyakov/ExpenseKeeper/internal/repository"
	"github.com/atinyakov/ExpenseKeeper/internal/server/handler/http"
	"github.com/atinyakov/ExpenseKeeper/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// storage bundles the repositories the server needs from one backend.
type storage struct {
	accounts service.AuthRepository
	expenses service.ExpenseRepository
	projects service.ProjectRepository
	purger   db.Purger
	close    func() error
}

func openStorage(ctx context.Context, dsn string, log *zap.Logger) (*storage, error) {
	if dsn == "" {
		log.Warn("no database configured, keeping data in memory")
		mem := repository.NewMemoryStore()
		return &storage{
			accounts: mem,
			expenses: mem,
			projects: mem,
			purger:   mem,
			close:    func() error { return nil },
		}, nil
	}

	conn, err := db.InitPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	expenses := repository.NewPostgresExpenseRepository(conn)
	return &storage{
		accounts: repository.NewPostgresAuthRepository(conn),
		expenses: expenses,
		projects: repository.NewPostgresProjectRepository(conn),
		purger:   expenses,
		close:    conn.Close,
	}, nil
}

func main() {
	// Parse command-line and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	// A missing signing secret is fatal here, never a per-request failure.
	if err := options.Validate(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}

	tokens, err := auth.NewTokenService(options.JWTSecret)
	if err != nil {
		zapLogger.Fatal("cannot init token service", zap.Error(err))
	}
	hasher, err := auth.NewPasswordHasher(auth.PasswordCost)
	if err != nil {
		zapLogger.Fatal("cannot init password hasher", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, options.DatabaseDSN, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer func() { _ = store.close() }()

	db.StartSoftDeleteCleaner(ctx, store.purger, options.CleanerInterval, options.Retention, zapLogger)

	// Initialize business-logic services.
	authService := service.NewAuthService(store.accounts, hasher, tokens)
	expenseService := service.NewExpenseService(store.expenses)
	projectService := service.NewProjectService(store.projects)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Auth:     &http.AuthHandler{AuthService: authService, Log: zapLogger},
		Users:    &http.UserHandler{UserService: authService, Log: zapLogger},
		Expenses: &http.ExpenseHandler{ExpenseService: expenseService, Log: zapLogger},
		Projects: &http.ProjectHandler{ProjectService: projectService, Log: zapLogger},
	}, tokens, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port), zap.String("env", options.Env))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port), zap.String("env", options.Env))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
