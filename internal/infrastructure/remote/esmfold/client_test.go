package esmfold

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

func pdbFixture() string {
	return fmt.Sprintf("%-80s\n%-80s\n",
		"ATOM      1  CA  ALA A   1      11.000  12.000  13.000  1.00  0.00           C",
		"ATOM      2  CA  GLY A   2      14.000  15.000  16.000  1.00  0.00           C")
}

func newTestClient(url string) *Client {
	return NewClient(config.FoldConfig{BaseURL: url, Timeout: 5 * time.Second}, logging.NewNopLogger())
}

func TestFoldPostsRawSequence(t *testing.T) {
	var gotBody string
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotMethod = r.Method
		fmt.Fprint(w, pdbFixture())
	}))
	defer srv.Close()

	st, err := newTestClient(srv.URL).Fold(context.Background(), "AG")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "AG", gotBody)
	assert.Equal(t, 2, st.AtomCount())
}

func TestFoldBadStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fold(context.Background(), "AG")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeFoldBadStatus, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "503")
}

func TestFoldEmptyBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fold(context.Background(), "AG")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeFoldEmptyResult, apperrors.GetCode(err))
}

func TestFoldRejectsInvalidSequence(t *testing.T) {
	_, err := newTestClient("http://unused.invalid").Fold(context.Background(), "AB1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
}

func TestFoldHonoursContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(srv.URL).Fold(ctx, "AG")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeFoldServiceFailed, apperrors.GetCode(err))
}
