package security_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuery/zuery/internal/security"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestAuditLoggerHashesQuery(t *testing.T) {
	buf := captureLog(t)

	a := security.NewAuditLogger(true)
	a.LogInterpretation(security.InterpretationEvent{
		Query:         "show users with email",
		APIKey:        "secret-key",
		RequestID:     "req-1",
		Outcome:       "success",
		SQL:           "SELECT email FROM users",
		Confidence:    0.9,
		MatchedFields: 1,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "interpretation_audit", entry["event"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Len(t, entry["query_hash"], 16)
	assert.Len(t, entry["sql_hash"], 16)
	assert.NotContains(t, buf.String(), "show users with email")
	assert.NotContains(t, buf.String(), "secret-key")
	assert.NotContains(t, entry, "error")
}

func TestAuditLoggerIncludesError(t *testing.T) {
	buf := captureLog(t)

	security.NewAuditLogger(true).LogInterpretation(security.InterpretationEvent{
		Query:   "q",
		Outcome: "parse_error",
		Error:   "line 2: invalid confidence",
	})
	assert.Contains(t, buf.String(), `"error":"line 2: invalid confidence"`)
	assert.Contains(t, buf.String(), `"api_key_hash":""`)
}

func TestAuditLoggerDisabled(t *testing.T) {
	buf := captureLog(t)

	security.NewAuditLogger(false).LogInterpretation(security.InterpretationEvent{Query: "q"})
	assert.Zero(t, buf.Len())
}
