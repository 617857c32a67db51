package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesUniqueDirectories(t *testing.T) {
	root := t.TempDir()

	a, err := New(root, "dock")
	require.NoError(t, err)
	defer a.Remove()

	b, err := New(root, "dock")
	require.NoError(t, err)
	defer b.Remove()

	assert.NotEqual(t, a.Dir(), b.Dir())
	assert.True(t, strings.HasPrefix(filepath.Base(a.Dir()), "dock_"))

	info, err := os.Stat(a.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteAndReadFile(t *testing.T) {
	ws, err := New(t.TempDir(), "job")
	require.NoError(t, err)
	defer ws.Remove()

	require.NoError(t, ws.WriteFile("receptor.pdbqt", "ATOM line"))

	content, err := ws.ReadFile("receptor.pdbqt")
	require.NoError(t, err)
	assert.Equal(t, "ATOM line", content)
	assert.Equal(t, filepath.Join(ws.Dir(), "receptor.pdbqt"), ws.Path("receptor.pdbqt"))
}

func TestRemoveDeletesEverything(t *testing.T) {
	ws, err := New(t.TempDir(), "job")
	require.NoError(t, err)
	require.NoError(t, ws.WriteFile("out.pdbqt", "data"))

	ws.Remove()

	_, statErr := os.Stat(ws.Dir())
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "tmp")

	ws, err := New(root, "job")
	require.NoError(t, err)
	defer ws.Remove()

	_, statErr := os.Stat(ws.Dir())
	assert.NoError(t, statErr)
}
