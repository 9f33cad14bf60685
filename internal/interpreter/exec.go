package interpreter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// waitDelay bounds how long Run waits for output pipes after the process
// has been killed on timeout.
const waitDelay = 5 * time.Second

// ExecConfig describes how to launch the interpreter binary.
type ExecConfig struct {
	Name    string
	Path    string
	Args    []string
	Timeout time.Duration // 0 waits forever
}

// Exec runs the interpreter as a child process, one process per query.
// The query is written to the process's stdin.
type Exec struct {
	cfg     ExecConfig
	scratch *Scratch
}

// NewExec creates an Exec. scratch may be nil.
func NewExec(cfg ExecConfig, scratch *Scratch) *Exec {
	if cfg.Name == "" {
		cfg.Name = filepath.Base(cfg.Path)
	}
	return &Exec{cfg: cfg, scratch: scratch}
}

func (e *Exec) Name() string {
	return e.cfg.Name
}

// Check reports whether the configured binary can be resolved.
func (e *Exec) Check(_ context.Context) error {
	if _, err := exec.LookPath(e.cfg.Path); err != nil {
		return fmt.Errorf("resolve %s: %w", e.cfg.Path, err)
	}
	return nil
}

// Interpret blocks until the process exits and both output streams are
// drained.
func (e *Exec) Interpret(ctx context.Context, query string) (*Output, error) {
	if e.scratch != nil {
		path, cleanup, err := e.scratch.Write(query)
		if err != nil {
			log.Warn().Err(err).Msg("scratch file not written")
		} else {
			defer cleanup()
			log.Debug().Str("path", path).Msg("query scratch file written")
		}
	}

	runCtx := ctx
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, e.cfg.Path, e.cfg.Args...)
	cmd.Stdin = strings.NewReader(query)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	out := &Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err == nil {
		return out, nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%w after %s", ErrTimeout, e.cfg.Timeout)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("interpret: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return nil, &LaunchError{Path: e.cfg.Path, Err: err}
}
