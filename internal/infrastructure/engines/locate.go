// Package engines holds shared helpers for the external scoring binaries.
package engines

import (
	"os"
	"os/exec"

	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

// LocateBinary resolves the executable for an engine.  The configured path
// wins when it points at an existing file; otherwise each fallback path is
// probed in order, and finally PATH is searched for the given names.
func LocateBinary(configured string, fallbacks []string, names ...string) (string, error) {
	candidates := make([]string, 0, len(fallbacks)+1)
	if configured != "" {
		candidates = append(candidates, configured)
	}
	candidates = append(candidates, fallbacks...)
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", apperrors.New(apperrors.ErrCodeDockingMissingBin,
		"engine binary not found").WithDetail("searched configured path, fallbacks and PATH")
}
