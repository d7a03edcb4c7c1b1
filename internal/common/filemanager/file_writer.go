package filemanager

import (
	"os"
	"path/filepath"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// FileWriter handles file writing operations
type FileWriter struct {
	logger zerolog.Logger
}

// NewFileWriter creates a new FileWriter instance
func NewFileWriter(logger zerolog.Logger) *FileWriter {
	return &FileWriter{
		logger: logger.With().Str("component", "FileWriter").Logger(),
	}
}

// WriteFile writes data to a file with the given options. Once started the
// write is not interrupted by the context.
func (fw *FileWriter) WriteFile(path string, data []byte, opts FileWriteOptions) error {
	if opts.Context != nil {
		if err := opts.Context.Err(); err != nil {
			return errorwrapper.WrapError(err, "file write operation cancelled")
		}
	}

	perm := opts.Permissions
	if stat, err := os.Stat(path); err == nil {
		perm = stat.Mode().Perm()
	}

	var err error
	if opts.Atomic {
		err = fw.performAtomicWrite(path, data, perm)
	} else {
		err = fw.performFileWrite(path, data, perm)
	}
	if err != nil {
		return err
	}

	fw.logger.Debug().Str("path", path).Int("bytes", len(data)).Bool("atomic", opts.Atomic).Msg("File written successfully")
	return nil
}

// performAtomicWrite writes into a temp file next to path and renames it over
// path, so readers observe either the old or the new content.
func (fw *FileWriter) performAtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".sgpatch-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			fw.logger.Warn().Err(removeErr).Str("path", tmpPath).Msg("Failed to remove temp file")
		}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

// performFileWrite performs a plain truncating write
func (fw *FileWriter) performFileWrite(path string, data []byte, perm os.FileMode) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fw.logger.Error().Err(closeErr).Str("path", path).Msg("Failed to close file after writing")
		}
	}()

	_, err = file.Write(data)
	return err
}
