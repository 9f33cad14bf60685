package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/zuery/zuery/internal/config"
	"github.com/zuery/zuery/internal/handler"
	"github.com/zuery/zuery/internal/interpreter"
	"github.com/zuery/zuery/internal/metrics"
	"github.com/zuery/zuery/internal/middleware"
	"github.com/zuery/zuery/internal/report"
	"github.com/zuery/zuery/internal/security"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Interpreter interpreter.Interpreter
	Checks      map[string]handler.HealthChecker
	Metrics     *metrics.Metrics // nil disables /metrics
}

// Routes builds the HTTP handler for cfg.
func Routes(cfg *config.Config, deps Deps) http.Handler {
	// ─── Handlers ────────────────────────────────────────────────────────────────
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)
	parser := report.Parser{LenientConfidence: cfg.LenientConfidence}

	healthH := handler.NewHealthHandler(deps.Checks)
	queryH := handler.NewQueryHandler(deps.Interpreter, parser, auditLogger, deps.Metrics, cfg.MaxBodyBytes, cfg.APIKeyHeader)

	authEnabled := cfg.EnableAuth && len(cfg.APIKeys) > 0
	log.Info().
		Str("interpreter", deps.Interpreter.Name()).
		Str("query_path", cfg.QueryPath).
		Bool("auth_enabled", authEnabled).
		Int("rate_limit_per_minute", cfg.RateLimitPerMinute).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Bool("metrics_enabled", deps.Metrics != nil).
		Bool("lenient_confidence", cfg.LenientConfidence).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - auth is disabled")
	}

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins, cfg.APIKeyHeader)))
	r.Use(chiMiddleware.RealIP)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.NotFound)

	// Public routes
	r.Get("/health", healthH.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, cfg.APIKeyHeader))
		}
		if authEnabled {
			r.Use(middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
		}
		r.Post(cfg.QueryPath, queryH.Interpret)
	})

	return r
}
