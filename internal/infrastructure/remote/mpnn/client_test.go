package mpnn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/domain/evolution"
	"github.com/messiay/protein-refinary/internal/domain/structure"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

func seedStructure(t *testing.T) *structure.Structure {
	t.Helper()
	text := fmt.Sprintf("%-80s\n%-80s\n%-80s\n",
		"ATOM      1  CA  ALA A   1      11.000  12.000  13.000  1.00  0.00           C",
		"ATOM      2  CA  GLY A   2      14.000  15.000  16.000  1.00  0.00           C",
		"ATOM      3  CA  LYS A   3      17.000  18.000  19.000  1.00  0.00           C")
	st, err := structure.Parse(text)
	require.NoError(t, err)
	return st
}

func newTestDesigner(url string) *Designer {
	cfg := config.DesignConfig{BaseURL: url, Chain: "A", SamplingTemp: "0.1", Timeout: 5 * time.Second}
	return NewDesigner(cfg, evolution.NewMutator(0.10, 42), logging.NewNopLogger())
}

func TestProposeRemoteSuccess(t *testing.T) {
	var gotReq designRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		resp := map[string]any{"sequences": []map[string]string{
			{"sequence": "AGK", "provenance": "design, score=1.2"},
			{"sequence": "AGR", "provenance": "design, score=1.5"},
		}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	set, err := newTestDesigner(srv.URL).Propose(context.Background(), seedStructure(t), 2)
	require.NoError(t, err)
	assert.Equal(t, evolution.OriginRemote, set.Origin)
	require.Len(t, set.Proposals, 2)
	assert.Equal(t, "AGK", string(set.Proposals[0].Sequence))
	assert.Equal(t, "design, score=1.2", set.Proposals[0].Provenance)
	assert.Equal(t, "A", gotReq.Chain)
	assert.Equal(t, 2, gotReq.NumSequences)
	assert.Contains(t, gotReq.PDB, "ATOM")
}

func TestProposeFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusBadGateway)
	}))
	defer srv.Close()

	d := newTestDesigner(srv.URL)
	fallbacks := 0
	d.SetFallbackHook(func() { fallbacks++ })

	set, err := d.Propose(context.Background(), seedStructure(t), 3)
	require.NoError(t, err)
	assert.Equal(t, evolution.OriginFallback, set.Origin)
	require.Len(t, set.Proposals, 3)
	for _, p := range set.Proposals {
		assert.Equal(t, evolution.FallbackProvenance, p.Provenance)
		assert.NoError(t, p.Sequence.Validate())
		assert.Equal(t, 3, p.Sequence.Len())
	}
	assert.Equal(t, 1, fallbacks)
}

func TestProposeFallsBackOnUnreachableService(t *testing.T) {
	d := newTestDesigner("http://127.0.0.1:1")

	set, err := d.Propose(context.Background(), seedStructure(t), 2)
	require.NoError(t, err)
	assert.Equal(t, evolution.OriginFallback, set.Origin)
	assert.Len(t, set.Proposals, 2)
}

func TestProposeTopsUpShortRemoteResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"sequences": []map[string]string{
			{"sequence": "AGK", "provenance": "design"},
		}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	set, err := newTestDesigner(srv.URL).Propose(context.Background(), seedStructure(t), 3)
	require.NoError(t, err)
	assert.Equal(t, evolution.OriginMixed, set.Origin)
	require.Len(t, set.Proposals, 3)
	assert.Equal(t, "design", set.Proposals[0].Provenance)
	assert.Equal(t, evolution.FallbackProvenance, set.Proposals[1].Provenance)
}

func TestProposeDiscardsInvalidRemoteSequences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"sequences": []map[string]string{
			{"sequence": "AG1", "provenance": "design"},
			{"sequence": "AGK", "provenance": "design"},
		}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	set, err := newTestDesigner(srv.URL).Propose(context.Background(), seedStructure(t), 1)
	require.NoError(t, err)
	require.Len(t, set.Proposals, 1)
	assert.Equal(t, "AGK", string(set.Proposals[0].Sequence))
}

func TestProposeTruncatesOverLongRemoteResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"sequences": []map[string]string{
			{"sequence": "AGK", "provenance": "a"},
			{"sequence": "AGR", "provenance": "b"},
			{"sequence": "AGH", "provenance": "c"},
		}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	set, err := newTestDesigner(srv.URL).Propose(context.Background(), seedStructure(t), 2)
	require.NoError(t, err)
	assert.Equal(t, evolution.OriginRemote, set.Origin)
	assert.Len(t, set.Proposals, 2)
}

func TestProposeRejectsNonPositiveCount(t *testing.T) {
	_, err := newTestDesigner("http://unused.invalid").Propose(context.Background(), seedStructure(t), 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
}

func TestProposeFailsWhenNoSeedAndNoRemote(t *testing.T) {
	hetOnly := fmt.Sprintf("%-80s\n",
		"HETATM    1  O   HOH A   1      11.000  12.000  13.000  1.00  0.00           O")
	st, err := structure.Parse(hetOnly)
	require.NoError(t, err)

	d := newTestDesigner("http://127.0.0.1:1")
	_, err = d.Propose(context.Background(), st, 2)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDesignServiceFailed, apperrors.GetCode(err))
}
