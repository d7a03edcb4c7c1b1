package patcher

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// BatchApplierConfig holds configuration for multi-file patching
type BatchApplierConfig struct {
	MaxConcurrentFiles int // Max files patched in parallel (default: 8)
}

// DefaultBatchApplierConfig returns default configuration
func DefaultBatchApplierConfig() BatchApplierConfig {
	return BatchApplierConfig{
		MaxConcurrentFiles: 8,
	}
}

// BatchResult holds the per-file outcomes of one batch, ordered by path.
type BatchResult struct {
	Outcomes  []FileOutcome
	Succeeded int
	Failed    int
}

// Err joins the errors of every failed file, or returns nil.
func (r *BatchResult) Err() error {
	var errs []error
	for _, outcome := range r.Outcomes {
		if outcome.Err != nil {
			errs = append(errs, outcome.Err)
		}
	}
	return errors.Join(errs...)
}

// BytesWritten returns the total size of successfully patched files.
func (r *BatchResult) BytesWritten() int {
	total := 0
	for _, outcome := range r.Outcomes {
		if outcome.Err == nil {
			total += outcome.BytesAfter
		}
	}
	return total
}

// BatchApplier patches every file of a batch. Files are independent and run
// in parallel; edits within one file are applied in a single pass.
type BatchApplier struct {
	patcher *FilePatcher
	config  BatchApplierConfig
	logger  zerolog.Logger
}

// NewBatchApplier creates a new batch applier
func NewBatchApplier(patcher *FilePatcher, config BatchApplierConfig, logger zerolog.Logger) *BatchApplier {
	if config.MaxConcurrentFiles <= 0 {
		config.MaxConcurrentFiles = DefaultBatchApplierConfig().MaxConcurrentFiles
	}
	return &BatchApplier{
		patcher: patcher,
		config:  config,
		logger:  logger.With().Str("component", "BatchApplier").Logger(),
	}
}

// Apply patches the batch. One file's failure never stops the others; files
// not yet started when ctx is cancelled are left untouched and reported.
func (ba *BatchApplier) Apply(ctx context.Context, batch *FileEditBatch) *BatchResult {
	paths := batch.Paths()
	outcomes := make([]FileOutcome, len(paths))

	ba.logger.Info().
		Str("root", batch.Root()).
		Int("files", len(paths)).
		Int("rejected", len(batch.Rejected())).
		Int("max_concurrent", ba.config.MaxConcurrentFiles).
		Msg("Starting batch patch")

	var g errgroup.Group
	g.SetLimit(ba.config.MaxConcurrentFiles)

	for i, path := range paths {
		edits := batch.Edits(path)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = FileOutcome{
					Path:  path,
					Edits: len(edits),
					Err:   errorwrapper.WrapError(err, "patch skipped"),
				}
				return nil
			}
			outcomes[i] = ba.patcher.PatchFile(ctx, path, edits)
			return nil
		})
	}
	_ = g.Wait()

	for path, err := range batch.Rejected() {
		outcomes = append(outcomes, FileOutcome{Path: path, Err: err})
	}
	slices.SortFunc(outcomes, func(a, b FileOutcome) int {
		return strings.Compare(a.Path, b.Path)
	})

	result := &BatchResult{Outcomes: outcomes}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			result.Failed++
			ba.logger.Warn().Err(outcome.Err).Str("path", outcome.Path).Msg("File patch failed")
			continue
		}
		result.Succeeded++
	}

	ba.logger.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Batch patch completed")

	return result
}
