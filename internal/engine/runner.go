// Package engine drives the external structural-search binary and decodes
// its match records.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/models"
	"github.com/rs/zerolog"
)

// RunnerConfig controls how the engine binary is invoked
type RunnerConfig struct {
	BinaryPath string
	Timeout    time.Duration // 0 = no limit
}

// DefaultRunnerConfig returns default configuration
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{BinaryPath: "sg"}
}

// Runner executes structural searches
type Runner struct {
	config   RunnerConfig
	executor CommandExecutor
	logger   zerolog.Logger
}

// NewRunner creates a new engine runner
func NewRunner(config RunnerConfig, executor CommandExecutor, logger zerolog.Logger) *Runner {
	if config.BinaryPath == "" {
		config.BinaryPath = DefaultRunnerConfig().BinaryPath
	}
	if executor == nil {
		executor = NewExecExecutor()
	}
	return &Runner{
		config:   config,
		executor: executor,
		logger:   logger.With().Str("component", "EngineRunner").Logger(),
	}
}

// BuildCommand prepares the scan invocation for q. It fails with a
// ConfigError before anything is executed.
func (r *Runner) BuildCommand(q Query) (Command, error) {
	if err := q.Validate(); err != nil {
		return Command{}, err
	}

	lang, err := ResolveLanguage(q.Language)
	if err != nil {
		return Command{}, err
	}

	rule, err := BuildInlineRule(q.Rule, lang.EngineTag)
	if err != nil {
		return Command{}, err
	}

	args := []string{"scan", "--inline-rules", rule, "--json=compact"}
	if globs := strings.TrimSpace(q.Globs); globs != "" {
		args = append(args, "--globs", globs)
	}

	return Command{Name: r.config.BinaryPath, Args: args, Dir: q.ProjectPath}, nil
}

// Search runs q and returns the engine's match records in engine order.
func (r *Runner) Search(ctx context.Context, q Query) ([]models.MatchRecord, error) {
	cmd, err := r.BuildCommand(q)
	if err != nil {
		return nil, err
	}

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	r.logger.Debug().
		Str("project", q.ProjectPath).
		Str("language", q.Language).
		Str("globs", q.Globs).
		Msg("Running structural search")

	result, err := r.executor.Run(ctx, cmd)
	if err != nil {
		return nil, r.startError(err)
	}

	diagnostic := SanitizeDiagnostic(string(result.Stderr))
	stdout := bytes.TrimSpace(result.Stdout)

	switch {
	case result.ExitCode != 0:
		if diagnostic == "" {
			diagnostic = fmt.Sprintf("%s exited with status %d", r.config.BinaryPath, result.ExitCode)
		}
		return nil, errorwrapper.NewEngineError(diagnostic, result.ExitCode, nil)
	case diagnostic != "" && len(stdout) == 0:
		return nil, errorwrapper.NewEngineError(diagnostic, 0, nil)
	case diagnostic != "" && looksLikeError(diagnostic):
		return nil, errorwrapper.NewEngineError(diagnostic, 0, nil)
	case diagnostic != "":
		r.logger.Warn().Str("diagnostic", diagnostic).Msg("Engine reported warnings")
	}

	if len(stdout) == 0 {
		return []models.MatchRecord{}, nil
	}

	var records []models.MatchRecord
	if err := json.Unmarshal(stdout, &records); err != nil {
		return nil, errorwrapper.NewParseError(err)
	}
	if records == nil {
		records = []models.MatchRecord{}
	}

	r.logger.Debug().
		Int("matches", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Structural search completed")

	return records, nil
}

func (r *Runner) startError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errorwrapper.NewEngineError(fmt.Sprintf("%s timed out after %s", r.config.BinaryPath, r.config.Timeout), -1, err)
	case errors.Is(err, context.Canceled):
		return errorwrapper.NewEngineError(fmt.Sprintf("%s was cancelled", r.config.BinaryPath), -1, err)
	case errors.Is(err, exec.ErrNotFound):
		return errorwrapper.NewEngineError(fmt.Sprintf("%s is not installed or not on PATH", r.config.BinaryPath), -1,
			errors.Join(errorwrapper.ErrEngineUnavailable, err))
	default:
		return errorwrapper.NewEngineError(err.Error(), -1, errors.Join(errorwrapper.ErrEngineUnavailable, err))
	}
}

// CheckInstalled reports whether the engine binary runs, and the version it
// prints.
func (r *Runner) CheckInstalled(ctx context.Context) (bool, string) {
	result, err := r.executor.Run(ctx, Command{Name: r.config.BinaryPath, Args: []string{"--version"}})
	if err != nil {
		r.logger.Debug().Err(err).Msg("Engine binary could not be started")
		return false, ""
	}
	if result.ExitCode != 0 {
		return false, ""
	}
	return true, strings.TrimSpace(string(result.Stdout))
}
