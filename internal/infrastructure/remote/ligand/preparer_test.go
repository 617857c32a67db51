package ligand

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

const aspirinSMILES = "CC(=O)OC1=CC=CC=C1C(=O)O"

func ligandPDBFixture() string {
	return fmt.Sprintf("%-80s\n%-80s\nEND\n",
		"HETATM    1  C1  LIG A   1       0.000   0.000   0.000  1.00  0.00           C",
		"HETATM    2  O1  LIG A   1       1.200   0.000   0.000  1.00  0.00           O")
}

func sdfFixture() string {
	return `aspirin
  generated

 13 13  0  0  0  0  0  0  0  0999 V2000
    1.2333    0.5540    0.7792 O   0  0  0  0  0  0  0  0  0  0  0  0
   -0.6952   -2.7148   -0.7502 O   0  0  0  0  0  0  0  0  0  0  0  0
    0.6905   -1.2063   -0.3658 C   0  0  0  0  0  0  0  0  0  0  0  0
  1  3  1  0
M  END
$$$$
`
}

func newTestPreparer(cactusURL, pubchemURL string) *Preparer {
	return NewPreparer(config.LigandConfig{
		CactusBaseURL:  cactusURL,
		PubChemBaseURL: pubchemURL,
		Timeout:        5 * time.Second,
	}, logging.NewNopLogger())
}

func TestPreparePrimaryResolver(t *testing.T) {
	var gotPath string
	cactus := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, ligandPDBFixture())
	}))
	defer cactus.Close()

	pdbqt, err := newTestPreparer(cactus.URL, "http://unused.invalid").Prepare(context.Background(), aspirinSMILES)
	require.NoError(t, err)
	assert.Contains(t, gotPath, "/pdb")
	assert.Contains(t, pdbqt, "HETATM")
	for _, line := range strings.Split(strings.TrimRight(pdbqt, "\n"), "\n") {
		assert.Len(t, line, 79)
		assert.Contains(t, line, "+0.00")
	}
}

func TestPrepareFallsBackToConformerService(t *testing.T) {
	cactus := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer cactus.Close()
	pubchem := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "record_type=3d")
		fmt.Fprint(w, sdfFixture())
	}))
	defer pubchem.Close()

	pdbqt, err := newTestPreparer(cactus.URL, pubchem.URL).Prepare(context.Background(), aspirinSMILES)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(pdbqt, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "HETATM"))
	assert.Len(t, lines[0], 79)
}

func TestPrepareRejectsErrorPageBody(t *testing.T) {
	cactus := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat(" ", 60)+"Page not found")
	}))
	defer cactus.Close()
	pubchem := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sdfFixture())
	}))
	defer pubchem.Close()

	pdbqt, err := newTestPreparer(cactus.URL, pubchem.URL).Prepare(context.Background(), aspirinSMILES)
	require.NoError(t, err)
	assert.Contains(t, pdbqt, "HETATM")
}

func TestPrepareBothResolversFail(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer failing.Close()

	_, err := newTestPreparer(failing.URL, failing.URL).Prepare(context.Background(), aspirinSMILES)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeLigandNoConformer, apperrors.GetCode(err))
}

func TestPrepareEmptySMILES(t *testing.T) {
	_, err := newTestPreparer("http://unused.invalid", "http://unused.invalid").Prepare(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeLigandInvalidSMILES, apperrors.GetCode(err))
}

func TestSDFToPDB(t *testing.T) {
	pdb, err := sdfToPDB(sdfFixture())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(pdb, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "HETATM    1 O"))
	assert.Contains(t, lines[2], "C")
	assert.Equal(t, "END", lines[3])
}

func TestSDFToPDBNoAtoms(t *testing.T) {
	_, err := sdfToPDB("header\nonly text lines here\n")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeLigandPrepFailed, apperrors.GetCode(err))
}
