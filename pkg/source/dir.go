// Package source provides injected file sources for the engine: a local
// directory reader and an S3-backed reader for deployments that keep
// templates in object storage.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirReader reads files relative to a root directory on the local
// filesystem. Paths are confined to the root.
type DirReader struct {
	root string
}

// NewDirReader creates a reader rooted at dir.
func NewDirReader(dir string) *DirReader {
	return &DirReader{root: dir}
}

// ReadFile implements engine.FileReader.
func (d *DirReader) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(d.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("source: path %q escapes root", path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
