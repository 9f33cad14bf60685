package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zuery/zuery/internal/config"
	"github.com/zuery/zuery/internal/server"
)

// flagOverrides holds values given on the command line; only flags the user
// actually set are applied on top of the loaded config.
type flagOverrides struct {
	host              string
	port              int
	interpreter       string
	interpreterArgs   []string
	timeout           time.Duration
	maxConcurrent     int
	scratchDir        string
	logLevel          string
	logFormat         string
	lenientConfidence bool
}

func newRootCmd() *cobra.Command {
	cmd, _ := buildRootCmd()
	return cmd
}

func buildRootCmd() (*cobra.Command, *flagOverrides) {
	fo := &flagOverrides{}

	cmd := &cobra.Command{
		Use:           "zuery-server",
		Short:         "HTTP front-end for the zuery natural-language-to-SQL interpreter",
		Long:          `zuery-server accepts POST /query requests, runs the zuery interpreter with the query on stdin and returns its report as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := fo.apply(cmd, cfg); err != nil {
				return err
			}
			if err := setupLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fo.host, "host", config.DefaultHost, "address to listen on")
	f.IntVarP(&fo.port, "port", "p", config.DefaultPort, "port to listen on")
	f.StringVar(&fo.interpreter, "interpreter", config.DefaultInterpreterPath, "path of the interpreter binary")
	f.StringSliceVar(&fo.interpreterArgs, "interpreter-arg", nil, "argument passed to the interpreter (repeatable)")
	f.DurationVar(&fo.timeout, "timeout", 0, "kill the interpreter after this long (0 waits forever)")
	f.IntVar(&fo.maxConcurrent, "max-concurrent", config.DefaultMaxConcurrent, "maximum interpreter processes running at once")
	f.StringVar(&fo.scratchDir, "scratch-dir", "", "also write each query to a file in this directory")
	f.StringVar(&fo.logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	f.StringVar(&fo.logFormat, "log-format", config.DefaultLogFormat, "log format (json, console)")
	f.BoolVar(&fo.lenientConfidence, "lenient-confidence", false, "treat an unparseable Confidence line as 0.0 instead of failing")

	return cmd, fo
}

func (fo *flagOverrides) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("host") {
		cfg.Host = fo.host
	}
	if changed("port") {
		cfg.Port = fo.port
	}
	if changed("interpreter") {
		cfg.InterpreterPath = fo.interpreter
	}
	if changed("interpreter-arg") {
		cfg.InterpreterArgs = fo.interpreterArgs
	}
	if changed("timeout") {
		// round up so a sub-second timeout never means "wait forever"
		cfg.InterpreterTimeoutSeconds = int((fo.timeout + time.Second - 1) / time.Second)
	}
	if changed("max-concurrent") {
		cfg.MaxConcurrent = fo.maxConcurrent
	}
	if changed("scratch-dir") {
		cfg.ScratchDir = fo.scratchDir
	}
	if changed("log-level") {
		cfg.LogLevel = fo.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = fo.logFormat
	}
	if changed("lenient-confidence") {
		cfg.LenientConfidence = fo.lenientConfidence
	}
	return cfg.Validate()
}

func setupLogging(level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	switch format {
	case "", "json":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	case "console":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}
