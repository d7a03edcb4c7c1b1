package patcher

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/models"
)

// FileEditBatch groups edits by file. Keys are canonical absolute paths
// inside the batch root, so two spellings of the same file share one entry.
type FileEditBatch struct {
	root     string
	edits    map[string][]models.Edit
	rejected map[string]error
}

// NewFileEditBatch creates an empty batch rooted at root.
func NewFileEditBatch(root string) (*FileEditBatch, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errorwrapper.NewValidationError("project_path", root, "project path cannot be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errorwrapper.NewIOError(root, "resolve", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	return &FileEditBatch{
		root:     abs,
		edits:    make(map[string][]models.Edit),
		rejected: make(map[string]error),
	}, nil
}

// BatchFromRequest builds a batch from a patch request. Paths that cannot be
// resolved inside the project are recorded as rejected rather than failing
// the whole request.
func BatchFromRequest(req models.PatchRequest) (*FileEditBatch, error) {
	batch, err := NewFileEditBatch(req.ProjectPath)
	if err != nil {
		return nil, err
	}

	for path, tuples := range req.Replacements {
		edits := make([]models.Edit, 0, len(tuples))
		for _, tuple := range tuples {
			edits = append(edits, tuple.ToEdit())
		}
		// unresolvable paths are kept in Rejected and reported by the applier
		batch.Add(path, edits...)
	}

	return batch, nil
}

// Root returns the canonical batch root.
func (b *FileEditBatch) Root() string {
	return b.root
}

// Add appends edits for path and returns the canonical key they were stored
// under. When an alias of an already present file is added the merged list is
// re-sorted by start offset; overlaps are still reported at apply time.
func (b *FileEditBatch) Add(path string, edits ...models.Edit) (string, error) {
	key, err := b.Canonicalize(path)
	if err != nil {
		b.rejected[path] = err
		return "", err
	}

	if existing, ok := b.edits[key]; ok {
		b.edits[key] = SortEdits(append(existing, edits...))
		return key, nil
	}

	b.edits[key] = slices.Clone(edits)
	return key, nil
}

// Canonicalize resolves path against the batch root. Relative paths are
// joined to the root, symlinks are followed when the file exists, and
// anything that ends up outside the root is rejected.
func (b *FileEditBatch) Canonicalize(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errorwrapper.NewIOError(path, "resolve", errorwrapper.ErrInvalidInput)
	}

	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(b.root, candidate)
	}
	candidate = filepath.Clean(candidate)

	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if !os.IsNotExist(err) {
		return "", errorwrapper.NewIOError(path, "resolve", err)
	}

	rel, err := filepath.Rel(b.root, candidate)
	if err != nil {
		return "", errorwrapper.NewIOError(path, "resolve", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errorwrapper.NewIOError(path, "resolve", errorwrapper.WrapError(errorwrapper.ErrInvalidInput, "path escapes project root"))
	}

	return candidate, nil
}

// Paths returns the canonical keys in lexical order.
func (b *FileEditBatch) Paths() []string {
	paths := make([]string, 0, len(b.edits))
	for path := range b.edits {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Edits returns the edits stored for a canonical key.
func (b *FileEditBatch) Edits(key string) []models.Edit {
	return b.edits[key]
}

// Rejected returns the paths that could not be added, keyed as supplied.
func (b *FileEditBatch) Rejected() map[string]error {
	return b.rejected
}

// Len returns the number of files in the batch, rejected paths excluded.
func (b *FileEditBatch) Len() int {
	return len(b.edits)
}
