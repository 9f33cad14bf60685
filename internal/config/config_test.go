package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuery/zuery/internal/config"
)

// isolate points .env and JSON lookups at an empty temp dir and clears the
// variables a test is about to rely on.
func isolate(t *testing.T, keys ...string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ZUERY_ENV_FILE", filepath.Join(dir, ".env"))
	t.Setenv("ZUERY_CONFIG", "")
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t,
		"ZUERY_HOST", "ZUERY_PORT", "ZUERY_QUERY_PATH", "ZUERY_SCRATCH_DIR",
		"ZUERY_INTERPRETER_NAME", "ZUERY_INTERPRETER_PATH", "ZUERY_INTERPRETER_TIMEOUT_SECONDS",
		"ZUERY_MAX_CONCURRENT", "ZUERY_CORS_ORIGINS", "ZUERY_ENABLE_AUTH", "ZUERY_LENIENT_CONFIDENCE",
	)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/query", cfg.QueryPath)
	assert.Equal(t, "zuery", cfg.InterpreterName)
	assert.Equal(t, 1, cfg.MaxConcurrent)
	assert.Empty(t, cfg.ScratchDir)
	assert.Zero(t, cfg.InterpreterTimeout())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.EnableAuth)
	assert.False(t, cfg.LenientConfidence)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoadJSONThenEnv(t *testing.T) {
	dir := isolate(t, "ZUERY_PORT", "ZUERY_INTERPRETER_PATH", "ZUERY_INTERPRETER_TIMEOUT_SECONDS")

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"port": 9000,
		"interpreter_path": "/opt/zuery/bin/zuery",
		"interpreter_timeout_seconds": 30
	}`), 0o600))
	t.Setenv("ZUERY_CONFIG", path)
	t.Setenv("ZUERY_PORT", "9100")
	t.Setenv("ZUERY_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "/opt/zuery/bin/zuery", cfg.InterpreterPath)
	assert.Equal(t, 30*time.Second, cfg.InterpreterTimeout())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t, "ZUERY_INTERPRETER_NAME", "ZUERY_LENIENT_CONFIDENCE")

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ZUERY_INTERPRETER_NAME=zuery-dev\nZUERY_LENIENT_CONFIDENCE=true\n"), 0o600))
	t.Setenv("ZUERY_ENV_FILE", envFile)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "zuery-dev", cfg.InterpreterName)
	assert.True(t, cfg.LenientConfidence)
}

func TestLoadBadJSON(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port":`), 0o600))
	t.Setenv("ZUERY_CONFIG", path)

	_, err := config.Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"port", func(c *config.Config) { c.Port = 70000 }},
		{"interpreter path", func(c *config.Config) { c.InterpreterPath = "" }},
		{"query path", func(c *config.Config) { c.QueryPath = "query" }},
		{"timeout", func(c *config.Config) { c.InterpreterTimeoutSeconds = -1 }},
		{"body size", func(c *config.Config) { c.MaxBodyBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, config.Default().Validate())
}
