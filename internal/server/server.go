package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zuery/zuery/internal/config"
	"github.com/zuery/zuery/internal/handler"
	"github.com/zuery/zuery/internal/interpreter"
	"github.com/zuery/zuery/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg  *config.Config
	http *http.Server
}

// New wires the exec interpreter described by cfg behind a bounded pool.
func New(cfg *config.Config) (*Server, error) {
	var scratch *interpreter.Scratch
	if cfg.ScratchDir != "" {
		var err error
		if scratch, err = interpreter.NewScratch(cfg.ScratchDir); err != nil {
			return nil, fmt.Errorf("setup scratch: %w", err)
		}
		log.Info().Str("dir", scratch.Dir()).Msg("writing per-request scratch files")
	}

	execInterp := interpreter.NewExec(interpreter.ExecConfig{
		Name:    cfg.InterpreterName,
		Path:    cfg.InterpreterPath,
		Args:    cfg.InterpreterArgs,
		Timeout: cfg.InterpreterTimeout(),
	}, scratch)
	if err := execInterp.Check(context.Background()); err != nil {
		log.Warn().Err(err).Msg("interpreter binary not found - requests will fail until it is installed")
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	pool := interpreter.NewPool(execInterp, cfg.MaxConcurrent)
	log.Debug().Int("max_concurrent", pool.Size()).Msg("interpreter pool ready")

	router := Routes(cfg, Deps{
		Interpreter: pool,
		Checks:      map[string]handler.HealthChecker{"interpreter": execInterp},
		Metrics:     m,
	})

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      writeTimeout(cfg),
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

// writeTimeout leaves room for the interpreter; without an interpreter
// timeout the response may take arbitrarily long.
func writeTimeout(cfg *config.Config) time.Duration {
	if t := cfg.InterpreterTimeout(); t > 0 {
		return t + 15*time.Second
	}
	return 0
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("starting zuery HTTP server")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info().Msg("server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
