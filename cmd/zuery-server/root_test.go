package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuery/zuery/internal/config"
)

func TestFlagOverridesOnlyChangedFlags(t *testing.T) {
	cmd, fo := buildRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--port", "9090",
		"--interpreter", "/opt/zuery/bin/zuery",
		"--interpreter-arg", "--schema=prod",
		"--timeout", "1500ms",
		"--lenient-confidence",
	}))

	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	require.NoError(t, fo.apply(cmd, cfg))
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/opt/zuery/bin/zuery", cfg.InterpreterPath)
	assert.Equal(t, []string{"--schema=prod"}, cfg.InterpreterArgs)
	assert.Equal(t, 2*time.Second, cfg.InterpreterTimeout())
	assert.True(t, cfg.LenientConfidence)
}

func TestSetupLogging(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	assert.NoError(t, setupLogging("debug", "console"))
	assert.NoError(t, setupLogging("INFO", "json"))
	assert.Error(t, setupLogging("loud", "json"))
	assert.Error(t, setupLogging("info", "xml"))
}
