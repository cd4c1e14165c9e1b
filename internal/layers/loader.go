package layers

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed content
var embeddedContent embed.FS

// Loader reads static layer content by relative path. Injected so tests can
// substitute fixed content without touching the embedded files.
type Loader interface {
	Load(path string) (string, error)
}

// FSLoader reads layer content from an fs.FS.
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader creates a loader over the given filesystem.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// EmbeddedLoader returns a loader over the content shipped with the binary.
func EmbeddedLoader() *FSLoader {
	return &FSLoader{fsys: embeddedContent}
}

// Load reads the content file at the given relative path.
func (l *FSLoader) Load(path string) (string, error) {
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return "", fmt.Errorf("failed to load layer content %q: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// MapLoader serves content from an in-memory map. Test helper.
type MapLoader map[string]string

func (m MapLoader) Load(path string) (string, error) {
	content, ok := m[path]
	if !ok {
		return "", fmt.Errorf("failed to load layer content %q: not found", path)
	}
	return content, nil
}
