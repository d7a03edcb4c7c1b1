package orchestrator

import (
	"context"
	"fmt"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/models"
	"github.com/aleister1102/sgpatch/internal/patcher"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var requestValidator = validator.New()

// ReplaceResult is the outcome of one multi-file patch
type ReplaceResult struct {
	RunID string
	*patcher.BatchResult
}

// ValidatePatchRequest checks the request shape before any file is touched.
func ValidatePatchRequest(req models.PatchRequest) error {
	if err := requestValidator.Struct(req); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
			fe := validationErrs[0]
			return errorwrapper.NewValidationError(fe.Field(), fe.Value(), fmt.Sprintf("failed on the '%s' tag", fe.Tag()))
		}
		return errorwrapper.NewValidationError("request", req, err.Error())
	}

	for path, tuples := range req.Replacements {
		for i, tuple := range tuples {
			if tuple.ByteOffsetStart > tuple.ByteOffsetEnd {
				return errorwrapper.NewValidationError(
					fmt.Sprintf("replacements[%s][%d]", path, i),
					[2]uint32{tuple.ByteOffsetStart, tuple.ByteOffsetEnd},
					"start offset must not exceed end offset",
				)
			}
		}
	}
	return nil
}

// Replace applies the requested edits to every file. A non-nil error means
// the request itself was rejected; per-file failures are reported in the
// result.
func (s *Service) Replace(ctx context.Context, req models.PatchRequest) (*ReplaceResult, error) {
	if err := ValidatePatchRequest(req); err != nil {
		return nil, err
	}

	batch, err := patcher.BatchFromRequest(req)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	numEdits := 0
	for _, tuples := range req.Replacements {
		numEdits += len(tuples)
	}

	logger := s.logger.With().Str("run_id", runID).Logger()
	if s.store != nil {
		if err := s.store.RecordPatchStart(ctx, runID, batch.Root(), len(req.Replacements), numEdits, s.now()); err != nil {
			logger.Warn().Err(err).Msg("Failed to record patch run start")
		}
	}

	cfg := s.configSource.GetConfig()
	result := s.batchApplier(cfg).Apply(ctx, batch)

	for _, outcome := range result.Outcomes {
		event := logger.Debug()
		if outcome.Err != nil {
			event = logger.Warn().Err(outcome.Err)
		}
		event.Str("path", outcome.Path).
			Int("edits", outcome.Edits).
			Int("bytes_before", outcome.BytesBefore).
			Int("bytes_after", outcome.BytesAfter).
			Msg("File outcome")
	}

	if s.store != nil {
		// the run log must record the outcome even if the caller went away
		if err := s.store.UpdatePatchCompletion(context.WithoutCancel(ctx), runID, s.now(), result.Succeeded, result.Failed); err != nil {
			logger.Warn().Err(err).Msg("Failed to record patch run completion")
		}
	}

	logger.Info().
		Str("project", batch.Root()).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Replace completed")

	return &ReplaceResult{RunID: runID, BatchResult: result}, nil
}
