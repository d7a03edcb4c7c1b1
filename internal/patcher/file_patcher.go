package patcher

import (
	"bytes"
	"context"
	"errors"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/common/filemanager"
	"github.com/aleister1102/sgpatch/internal/models"
	"github.com/rs/zerolog"
)

// FileOutcome records what happened to one file of a batch.
type FileOutcome struct {
	Path        string `json:"path"`
	Edits       int    `json:"edits"`
	BytesBefore int    `json:"bytesBefore"`
	BytesAfter  int    `json:"bytesAfter"`
	Err         error  `json:"-"`
}

// Succeeded reports whether the file was patched (or needed no change).
func (o FileOutcome) Succeeded() bool {
	return o.Err == nil
}

// FilePatcher reads a file, applies edits and writes the result back atomically.
type FilePatcher struct {
	fileManager *filemanager.FileManager
	maxFileSize int64
	logger      zerolog.Logger
}

// NewFilePatcher creates a file patcher. maxFileSize of 0 disables the limit.
func NewFilePatcher(fileManager *filemanager.FileManager, maxFileSize int64, logger zerolog.Logger) *FilePatcher {
	return &FilePatcher{
		fileManager: fileManager,
		maxFileSize: maxFileSize,
		logger:      logger.With().Str("component", "FilePatcher").Logger(),
	}
}

// PatchFile applies edits to the file at path. On any error the file on disk
// is left as it was.
func (fp *FilePatcher) PatchFile(ctx context.Context, path string, edits []models.Edit) FileOutcome {
	outcome := FileOutcome{Path: path, Edits: len(edits)}

	readOpts := filemanager.DefaultFileReadOptions()
	readOpts.MaxSize = fp.maxFileSize
	readOpts.Context = ctx

	original, err := fp.fileManager.ReadFile(path, readOpts)
	if err != nil {
		outcome.Err = errorwrapper.NewIOError(path, "read", err)
		return outcome
	}
	outcome.BytesBefore = len(original)

	patched, err := ApplyEdits(original, edits)
	if err != nil {
		var malformed *errorwrapper.MalformedEditError
		if errors.As(err, &malformed) {
			malformed.Path = path
		}
		outcome.Err = err
		return outcome
	}
	outcome.BytesAfter = len(patched)

	if bytes.Equal(original, patched) {
		fp.logger.Debug().Str("path", path).Msg("Edits produced no change, skipping write")
		return outcome
	}

	writeOpts := filemanager.DefaultFileWriteOptions()
	// once the bytes are read the write is not abandoned mid-batch
	writeOpts.Context = context.WithoutCancel(ctx)
	if err := fp.fileManager.WriteFile(path, patched, writeOpts); err != nil {
		outcome.Err = errorwrapper.NewIOError(path, "write", err)
		return outcome
	}

	fp.logger.Debug().
		Str("path", path).
		Int("edits", len(edits)).
		Int("bytes_before", outcome.BytesBefore).
		Int("bytes_after", outcome.BytesAfter).
		Msg("File patched")

	return outcome
}
