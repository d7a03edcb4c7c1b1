package filemanager

import (
	"fmt"
	"os"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// FileReader handles file reading operations
type FileReader struct {
	logger zerolog.Logger
}

// NewFileReader creates a new FileReader instance
func NewFileReader(logger zerolog.Logger) *FileReader {
	return &FileReader{
		logger: logger.With().Str("component", "FileReader").Logger(),
	}
}

// ReadFile reads the whole file in one call.
func (fr *FileReader) ReadFile(path string, opts FileReadOptions) ([]byte, error) {
	if opts.Context != nil {
		if err := opts.Context.Err(); err != nil {
			return nil, errorwrapper.WrapError(err, "file read operation cancelled")
		}
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, errorwrapper.NewValidationError("path", path, "is a directory, not a file")
	}
	if opts.MaxSize > 0 && stat.Size() > opts.MaxSize {
		return nil, errorwrapper.NewValidationError("file_size", stat.Size(), fmt.Sprintf("exceeds maximum size of %d bytes", opts.MaxSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fr.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("File read successfully")
	return data, nil
}
