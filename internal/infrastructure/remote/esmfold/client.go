// Package esmfold predicts protein structures through the public ESM Atlas
// folding endpoint.  Prediction failures are fatal for the candidate being
// processed; inventing coordinates locally would poison downstream docking.
package esmfold

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/domain/structure"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
	"github.com/messiay/protein-refinary/pkg/types/protein"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// Client calls the folding service over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     logging.Logger
}

func NewClient(cfg config.FoldConfig, log logging.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		log:     log.Named("esmfold"),
	}
}

// Fold posts the raw one-letter sequence and parses the returned PDB text.
func (c *Client) Fold(ctx context.Context, seq protein.Sequence) (*structure.Structure, error) {
	if err := seq.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "refusing to fold invalid sequence")
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(string(seq)))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFoldServiceFailed, "failed to build fold request")
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFoldServiceFailed, "fold request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFoldServiceFailed, "failed to read fold response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.ErrCodeFoldBadStatus,
			"fold service returned status %d", resp.StatusCode).WithDetail(truncate(string(body), maxErrorBody))
	}

	st, err := structure.Parse(string(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFoldEmptyResult, "fold service returned no usable structure")
	}

	c.log.Debug("sequence folded",
		logging.Int("sequence_len", seq.Len()),
		logging.Int("atoms", st.AtomCount()),
		logging.Duration("elapsed", time.Since(start)))
	return st, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
