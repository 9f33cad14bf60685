package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs one event per interpretation with hashed identifiers so
// query text and API keys never reach the log sink in clear.
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// InterpretationEvent describes a finished POST /query.
type InterpretationEvent struct {
	Query         string
	APIKey        string
	RequestID     string
	Outcome       string
	ExitCode      int
	SQL           string
	Confidence    float64
	MatchedFields int
	DurationMs    int64
	Error         string
}

// LogInterpretation records an interpretation event
func (a *AuditLogger) LogInterpretation(ev InterpretationEvent) {
	if !a.enabled {
		return
	}

	evt := log.Info().
		Str("event", "interpretation_audit").
		Str("request_id", ev.RequestID).
		Str("query_hash", shortHash(ev.Query)).
		Str("api_key_hash", shortHash(ev.APIKey)).
		Str("outcome", ev.Outcome).
		Int("exit_code", ev.ExitCode).
		Float64("confidence", ev.Confidence).
		Int("matched_fields", ev.MatchedFields).
		Int64("execution_time_ms", ev.DurationMs)

	if ev.SQL != "" {
		evt = evt.Str("sql_hash", shortHash(ev.SQL))
	}
	if ev.Error != "" {
		evt = evt.Str("error", ev.Error)
	}
	evt.Msg("audit")
}

func shortHash(s string) string {
	if s == "" {
		return ""
	}
	return hashStr(s)[:16]
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
