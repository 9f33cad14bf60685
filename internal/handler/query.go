package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zuery/zuery/internal/interpreter"
	"github.com/zuery/zuery/internal/metrics"
	"github.com/zuery/zuery/internal/middleware"
	"github.com/zuery/zuery/internal/models"
	"github.com/zuery/zuery/internal/report"
	"github.com/zuery/zuery/internal/security"
)

// QueryHandler handles POST /query: it runs the interpreter on the caller's
// query and returns the parsed report.
type QueryHandler struct {
	interp       interpreter.Interpreter
	parser       report.Parser
	auditLogger  *security.AuditLogger
	metrics      *metrics.Metrics
	maxBodyBytes int64
	apiKeyHeader string
}

func NewQueryHandler(
	interp interpreter.Interpreter,
	parser report.Parser,
	auditLogger *security.AuditLogger,
	m *metrics.Metrics,
	maxBodyBytes int64,
	apiKeyHeader string,
) *QueryHandler {
	return &QueryHandler{
		interp:       interp,
		parser:       parser,
		auditLogger:  auditLogger,
		metrics:      m,
		maxBodyBytes: maxBodyBytes,
		apiKeyHeader: apiKeyHeader,
	}
}

// Interpret handles POST /query
func (h *QueryHandler) Interpret(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			models.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		models.WriteError(w, http.StatusBadRequest, models.ErrInvalidJSON.Error())
		return
	}

	req, err := models.DecodeQueryRequest(body)
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	done := h.metrics.Begin()
	defer done()

	ev := security.InterpretationEvent{
		Query:     req.Query,
		APIKey:    r.Header.Get(h.apiKeyHeader),
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}
	start := time.Now()
	defer func() {
		ev.DurationMs = time.Since(start).Milliseconds()
		h.auditLogger.LogInterpretation(ev)
		h.metrics.ObserveInterpretation(ev.Outcome)
	}()

	out, err := h.interp.Interpret(r.Context(), req.Query)
	if err != nil {
		status, outcome := classifyRunError(err)
		ev.Outcome, ev.Error = outcome, err.Error()
		log.Error().Err(err).Str("request_id", ev.RequestID).Msg("interpreter failed")
		models.WriteError(w, status, fmt.Sprintf("Failed to run %s: %v", h.interp.Name(), err))
		return
	}

	h.metrics.ObserveProcess(out.ExitCode, out.Duration)
	ev.ExitCode = out.ExitCode
	log.Debug().
		Str("request_id", ev.RequestID).
		Str("query", req.Query).
		Str("stdout", out.Stdout).
		Dur("duration", out.Duration).
		Msg("interpreter output")
	if out.ExitCode != 0 {
		log.Warn().
			Str("request_id", ev.RequestID).
			Int("exit_code", out.ExitCode).
			Str("stderr", out.Stderr).
			Msg("interpreter exited with non-zero status")
	}

	res, err := h.parser.Parse(out.Stdout)
	if err != nil {
		ev.Outcome, ev.Error = metrics.OutcomeParseError, err.Error()
		log.Warn().Err(err).Str("request_id", ev.RequestID).Msg("interpreter output not parseable")
		models.WriteErrorWithOutput(w, http.StatusInternalServerError, "Failed to parse output: "+err.Error(), out.Stdout)
		return
	}

	ev.Outcome = metrics.OutcomeSuccess
	ev.SQL, ev.Confidence, ev.MatchedFields = res.SQL, res.Confidence, len(res.MatchedFields)
	h.metrics.ObserveFields(len(res.MatchedFields))
	models.WriteJSON(w, http.StatusOK, res)
}

func classifyRunError(err error) (int, string) {
	switch {
	case errors.Is(err, interpreter.ErrTimeout):
		return http.StatusGatewayTimeout, metrics.OutcomeTimeout
	case errors.Is(err, interpreter.ErrUnavailable):
		return http.StatusServiceUnavailable, metrics.OutcomeUnavailable
	default:
		return http.StatusInternalServerError, metrics.OutcomeLaunchError
	}
}
