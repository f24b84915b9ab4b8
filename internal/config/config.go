// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"
)

// ErrMissingSecret is returned by Validate when no token signing secret is set.
var ErrMissingSecret = errors.New("JWT secret is not configured")

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN holds the PostgreSQL connection string. When empty the
	// server keeps its data in memory.
	DatabaseDSN string `json:"database_dsn"`

	// JWTSecret signs and verifies access tokens.
	JWTSecret string `json:"jwt_secret"`

	LogLevel string `json:"log_level"`

	// Env names the deployment environment, e.g. "development" or "production".
	Env string `json:"env"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Retention is how long soft-deleted expenses are kept before purging.
	Retention time.Duration `json:"-"`
	// CleanerInterval is how often the purge runs.
	CleanerInterval time.Duration `json:"-"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.JWTSecret, "s", "", "JWT signing secret")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.Env, "env", "development", "deployment environment")
	flag.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	flag.StringVar(&options.TLSKey, "tls-key", "", "path to TLS private key")
	flag.DurationVar(&options.Retention, "retention", 30*24*time.Hour, "how long soft-deleted expenses are kept")
	flag.DurationVar(&options.CleanerInterval, "cleaner-interval", time.Hour, "how often soft-deleted expenses are purged")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the config file and environment
// variables, in that order of increasing precedence.
func Parse() (*Options, error) {
	flag.Parse()
	if err := load(options, os.Getenv); err != nil {
		return nil, err
	}
	return options, nil
}

// load applies the config file and then the environment on top of o.
func load(o *Options, getenv func(string) string) error {
	if configPath := getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			data, err := os.ReadFile(o.Config)
			if err != nil {
				return fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, o); err != nil {
				return fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	strs := []struct {
		env string
		dst *string
	}{
		{"SERVER_ADDRESS", &o.Port},
		{"DATABASE_URL", &o.DatabaseDSN},
		{"JWT_SECRET", &o.JWTSecret},
		{"LOG_LEVEL", &o.LogLevel},
		{"APP_ENV", &o.Env},
		{"TLS_CERT", &o.TLSCert},
		{"TLS_KEY", &o.TLSKey},
	}
	for _, s := range strs {
		if v := getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"SOFT_DELETE_RETENTION", &o.Retention},
		{"CLEANER_INTERVAL", &o.CleanerInterval},
	}
	for _, d := range durations {
		if v := getenv(d.env); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", d.env, err)
			}
			*d.dst = parsed
		}
	}

	return nil
}

// Validate reports configuration that must stop the process at startup.
func (o *Options) Validate() error {
	if o.JWTSecret == "" {
		return ErrMissingSecret
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		return errors.New("TLS certificate and key must be set together")
	}
	if o.CleanerInterval <= 0 {
		return fmt.Errorf("cleaner interval must be positive, got %s", o.CleanerInterval)
	}
	return nil
}

// TLSEnabled reports whether the server should listen with HTTPS.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}
