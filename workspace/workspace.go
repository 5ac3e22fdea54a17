// Package workspace resolves caller-supplied document names to paths under
// one configured root directory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath indicates a document name that is empty or escapes the root.
var ErrInvalidPath = errors.New("workspace: invalid document path")

// DefaultRoot is used when no root directory is configured.
const DefaultRoot = "word_files"

// Workspace is the root directory all document names resolve under.
type Workspace struct {
	root string
}

// New creates the workspace, creating the root directory if absent.
func New(root string) (*Workspace, error) {
	if strings.TrimSpace(root) == "" {
		root = DefaultRoot
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: create root %q: %w", abs, err)
	}
	return &Workspace{root: abs}, nil
}

// Root returns the absolute root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Resolve maps a bare document name to an absolute path under the root.
// Names that are empty, contain separators, or carry traversal sequences are
// rejected before any file I/O.
func (w *Workspace) Resolve(name string) (string, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "", fmt.Errorf("document name is empty: %w", ErrInvalidPath)
	}
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("document name %q contains a traversal sequence: %w", name, ErrInvalidPath)
	}
	if strings.ContainsAny(clean, `/\`) {
		return "", fmt.Errorf("document name %q contains a path separator: %w", name, ErrInvalidPath)
	}
	path := filepath.Join(w.root, clean)
	if filepath.Dir(path) != w.root {
		return "", fmt.Errorf("document name %q escapes the root: %w", name, ErrInvalidPath)
	}
	return path, nil
}

// Exists reports whether a resolved path refers to an existing regular file.
func (w *Workspace) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
