package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func defaults() *Options {
	return &Options{
		Port:            "localhost:8080",
		LogLevel:        "info",
		Env:             "development",
		Retention:       30 * 24 * time.Hour,
		CleanerInterval: time.Hour,
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	o := defaults()
	err := load(o, envMap(map[string]string{
		"SERVER_ADDRESS":        ":9090",
		"DATABASE_URL":          "postgres://localhost/expenses",
		"JWT_SECRET":            "s3cret",
		"LOG_LEVEL":             "debug",
		"APP_ENV":               "production",
		"TLS_CERT":              "server.crt",
		"TLS_KEY":               "server.key",
		"SOFT_DELETE_RETENTION": "48h",
		"CLEANER_INTERVAL":      "5m",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", o.Port)
	assert.Equal(t, "postgres://localhost/expenses", o.DatabaseDSN)
	assert.Equal(t, "s3cret", o.JWTSecret)
	assert.Equal(t, "debug", o.LogLevel)
	assert.Equal(t, "production", o.Env)
	assert.True(t, o.TLSEnabled())
	assert.Equal(t, 48*time.Hour, o.Retention)
	assert.Equal(t, 5*time.Minute, o.CleanerInterval)
}

func TestLoad_BadDuration(t *testing.T) {
	err := load(defaults(), envMap(map[string]string{"CLEANER_INTERVAL": "soon"}))
	assert.Error(t, err)
}

func TestLoad_ConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_address": ":7000",
		"jwt_secret": "from-file",
		"log_level": "warn"
	}`), 0o600))

	o := defaults()
	err := load(o, envMap(map[string]string{
		"CONFIG":    path,
		"LOG_LEVEL": "error",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7000", o.Port)
	assert.Equal(t, "from-file", o.JWTSecret)
	assert.Equal(t, "error", o.LogLevel)
}

func TestLoad_MissingConfigFileIgnored(t *testing.T) {
	o := defaults()
	o.Config = filepath.Join(t.TempDir(), "absent.json")
	require.NoError(t, load(o, envMap(nil)))
	assert.Equal(t, "localhost:8080", o.Port)
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	o := defaults()
	o.Config = path
	assert.Error(t, load(o, envMap(nil)))
}

func TestValidate(t *testing.T) {
	o := defaults()
	assert.True(t, errors.Is(o.Validate(), ErrMissingSecret))

	o.JWTSecret = "s3cret"
	assert.NoError(t, o.Validate())
	assert.False(t, o.TLSEnabled())

	o.TLSCert = "only-cert.pem"
	assert.Error(t, o.Validate())

	o.TLSKey = "key.pem"
	assert.NoError(t, o.Validate())

	o.CleanerInterval = 0
	assert.Error(t, o.Validate())
}
