package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
)

func TestArchiveBestWritesSessionScopedFile(t *testing.T) {
	root := t.TempDir()
	store := NewOutputStore(root, logging.NewNopLogger())

	path, err := store.ArchiveBest(context.Background(), "abc123", 2, "G2_V1", "ATOM line\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "run_abc123", "G2_V1.pdb"), trimAbs(t, root, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ATOM line\n", string(data))
}

func TestArchiveBestOverwritesSameCandidate(t *testing.T) {
	store := NewOutputStore(t.TempDir(), logging.NewNopLogger())

	_, err := store.ArchiveBest(context.Background(), "s", 1, "G1_V1", "old")
	require.NoError(t, err)
	path, err := store.ArchiveBest(context.Background(), "s", 1, "G1_V1", "new")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestArchiveBestCancelledContext(t *testing.T) {
	store := NewOutputStore(t.TempDir(), logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ArchiveBest(ctx, "s", 1, "G1_V1", "data")
	assert.Error(t, err)
}

// trimAbs maps the returned absolute path back onto the temp root so the
// assertion stays stable across symlinked temp directories.
func trimAbs(t *testing.T, root, path string) string {
	t.Helper()
	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	rel, err := filepath.Rel(absRoot, path)
	require.NoError(t, err)
	return filepath.Join(root, rel)
}
