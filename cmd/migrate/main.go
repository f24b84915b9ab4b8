// Package main applies or resets the database schema.
//
// Usage:
//
//	migrate [flags] up
//	migrate [flags] -force reset
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/atinyakov/ExpenseKeeper/internal/config"
	"github.com/atinyakov/ExpenseKeeper/internal/db"
	"github.com/atinyakov/ExpenseKeeper/internal/logger"
	"go.uber.org/zap"
)

var force = flag.Bool("force", false, "allow reset to drop all data")

func main() {
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	command := flag.Arg(0)
	if command != "up" && command != "reset" {
		fmt.Fprintln(os.Stderr, "usage: migrate [flags] up|reset")
		os.Exit(2)
	}
	if options.DatabaseDSN == "" {
		zapLogger.Fatal("database DSN is required")
	}

	ctx := context.Background()
	conn, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer conn.Close()

	if command == "reset" {
		if err := db.Reset(ctx, conn, options.Env, *force); err != nil {
			zapLogger.Fatal("reset failed", zap.Error(err))
		}
		zapLogger.Info("database reset", zap.String("env", options.Env))
		return
	}
	zapLogger.Info("database schema is up to date")
}
