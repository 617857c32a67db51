// Package scratch manages the exclusively-owned working directories that
// engine subprocess calls run in.  Every job gets a fresh, uniquely named
// directory under the process temp root and guarantees its removal on all
// exit paths, so temp space cannot grow without bound across generations.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is one job-scoped scratch directory.
type Workspace struct {
	dir string
}

// New creates a scratch directory named <prefix>_<uuid> under root,
// creating root itself if needed.
func New(root, prefix string) (*Workspace, error) {
	dir := filepath.Join(root, fmt.Sprintf("%s_%s", prefix, uuid.NewString()))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("scratch: failed to create workspace %s: %w", dir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("scratch: failed to resolve workspace path: %w", err)
	}
	return &Workspace{dir: abs}, nil
}

// Dir returns the absolute workspace path.
func (w *Workspace) Dir() string { return w.dir }

// Path returns the absolute path of a file inside the workspace.
func (w *Workspace) Path(name string) string { return filepath.Join(w.dir, name) }

// WriteFile writes content to a file inside the workspace.
func (w *Workspace) WriteFile(name, content string) error {
	if err := os.WriteFile(w.Path(name), []byte(content), 0o640); err != nil {
		return fmt.Errorf("scratch: failed to write %s: %w", name, err)
	}
	return nil
}

// ReadFile reads a file from the workspace.
func (w *Workspace) ReadFile(name string) (string, error) {
	data, err := os.ReadFile(w.Path(name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Remove deletes the workspace and everything in it.  Always called via
// defer so cleanup runs on success, scorer failure, and cancellation alike.
func (w *Workspace) Remove() {
	_ = os.RemoveAll(w.dir)
}
