package viewer

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

func TestOpenLaunchesConfiguredBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake viewer script requires a POSIX shell")
	}
	dir := t.TempDir()
	marker := filepath.Join(dir, "opened.txt")
	bin := filepath.Join(dir, "viewer")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho \"$1\" > "+marker+"\n"), 0o755))
	structureFile := filepath.Join(dir, "best.pdb")
	require.NoError(t, os.WriteFile(structureFile, []byte("ATOM"), 0o644))

	l := NewLauncher(config.ViewerConfig{BinPath: bin}, logging.NewNopLogger())
	require.NoError(t, l.Open(structureFile))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(marker)
		return err == nil && len(data) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOpenMissingStructureFile(t *testing.T) {
	l := NewLauncher(config.ViewerConfig{}, logging.NewNopLogger())

	err := l.Open(filepath.Join(t.TempDir(), "absent.pdb"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeViewerLaunch, apperrors.GetCode(err))
}

func TestLocateFailsWithoutInstallation(t *testing.T) {
	structureFile := filepath.Join(t.TempDir(), "best.pdb")
	require.NoError(t, os.WriteFile(structureFile, []byte("ATOM"), 0o644))

	l := NewLauncher(config.ViewerConfig{BinPath: filepath.Join(t.TempDir(), "nope")}, logging.NewNopLogger())
	err := l.Open(structureFile)
	if err == nil {
		t.Skip("a viewer is installed on this machine")
	}
	assert.Equal(t, apperrors.ErrCodeViewerNotFound, apperrors.GetCode(err))
}
