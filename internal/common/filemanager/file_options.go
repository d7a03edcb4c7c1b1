package filemanager

import (
	"context"
	"io/fs"
	"time"
)

// FileInfo contains information about a file
type FileInfo struct {
	Path        string
	Name        string
	Size        int64
	IsDir       bool
	ModTime     time.Time
	Permissions fs.FileMode
}

// FileReadOptions configures file reading behavior
type FileReadOptions struct {
	MaxSize int64           // Maximum file size to read (0 = no limit)
	Context context.Context // Context checked before the read starts
}

// FileWriteOptions configures file writing behavior
type FileWriteOptions struct {
	Permissions fs.FileMode     // Used when the target does not exist yet
	Atomic      bool            // Write to a sibling temp file and rename over the target
	Context     context.Context // Context checked before the write starts
}

// DefaultFileReadOptions returns default file reading options
func DefaultFileReadOptions() FileReadOptions {
	return FileReadOptions{
		MaxSize: 50 * 1024 * 1024, // 50MB default
		Context: context.Background(),
	}
}

// DefaultFileWriteOptions returns default file writing options
func DefaultFileWriteOptions() FileWriteOptions {
	return FileWriteOptions{
		Permissions: 0644,
		Atomic:      true,
		Context:     context.Background(),
	}
}
