// Package mpnn generates candidate sequences through a hosted inverse-
// folding service, falling back to a local point mutator whenever the
// remote call cannot deliver.  The designer port guarantees callers a full
// proposal set, so the fallback loops until the requested count is met.
package mpnn

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/domain/evolution"
	"github.com/messiay/protein-refinary/internal/domain/structure"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
	"github.com/messiay/protein-refinary/pkg/types/protein"
)

const predictPath = "/run/predict"

// designRequest is the wire format of the hosted design endpoint.
type designRequest struct {
	PDB          string `json:"pdb"`
	Chain        string `json:"chain"`
	NumSequences int    `json:"num_sequences"`
	SamplingTemp string `json:"sampling_temp"`
}

// designResponse carries the generated sequences with their provenance.
type designResponse struct {
	Sequences []struct {
		Sequence   string `json:"sequence"`
		Provenance string `json:"provenance"`
	} `json:"sequences"`
}

// Designer proposes sequences remotely with a local mutation fallback.
type Designer struct {
	cfg     config.DesignConfig
	httpc   *http.Client
	mutator *evolution.Mutator
	log     logging.Logger

	// onFallback is invoked once per request that had to use the local
	// mutator.  Optional; used for metrics.
	onFallback func()
}

func NewDesigner(cfg config.DesignConfig, mutator *evolution.Mutator, log logging.Logger) *Designer {
	return &Designer{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		mutator: mutator,
		log:     log.Named("mpnn"),
	}
}

// SetFallbackHook registers a callback fired whenever the local mutator
// substitutes for the remote service.
func (d *Designer) SetFallbackHook(fn func()) { d.onFallback = fn }

// Propose returns exactly count proposals.  Remote results are preferred;
// any remote failure is logged and backfilled by mutating the seed's own
// sequence.  The only hard failure is a seed without residues combined
// with an unusable remote service.
func (d *Designer) Propose(ctx context.Context, seed *structure.Structure, count int) (evolution.ProposalSet, error) {
	if count < 1 {
		return evolution.ProposalSet{}, apperrors.Newf(apperrors.ErrCodeValidation,
			"proposal count must be positive, got %d", count)
	}

	proposals, remoteErr := d.proposeRemote(ctx, seed, count)
	if len(proposals) > count {
		proposals = proposals[:count]
	}
	if len(proposals) == count {
		return evolution.ProposalSet{Origin: evolution.OriginRemote, Proposals: proposals}, nil
	}

	if remoteErr != nil {
		d.log.Warn("design service unavailable, using local mutator",
			logging.Err(remoteErr))
	} else {
		d.log.Warn("design service returned short result, topping up locally",
			logging.Int("remote", len(proposals)),
			logging.Int("requested", count))
	}
	if d.onFallback != nil {
		d.onFallback()
	}

	seedSeq, err := seed.Sequence()
	if err != nil {
		if remoteErr != nil {
			return evolution.ProposalSet{}, apperrors.Wrap(remoteErr, apperrors.ErrCodeDesignServiceFailed,
				"design service failed and seed structure has no sequence to mutate")
		}
		return evolution.ProposalSet{}, apperrors.Wrap(err, apperrors.ErrCodeDesignNoSequence,
			"seed structure has no sequence to mutate")
	}

	origin := evolution.OriginFallback
	if len(proposals) > 0 {
		origin = evolution.OriginMixed
	}
	proposals = append(proposals, d.mutator.Propose(seedSeq, count-len(proposals))...)
	return evolution.ProposalSet{Origin: origin, Proposals: proposals}, nil
}

func (d *Designer) proposeRemote(ctx context.Context, seed *structure.Structure, count int) ([]evolution.Proposal, error) {
	endpoint, err := url.JoinPath(d.cfg.BaseURL, predictPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDesignServiceFailed, "invalid design service URL")
	}

	payload, err := json.Marshal(designRequest{
		PDB:          seed.Raw(),
		Chain:        d.cfg.Chain,
		NumSequences: count,
		SamplingTemp: d.cfg.SamplingTemp,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode design request")
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDesignServiceFailed, "failed to build design request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpc.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDesignServiceFailed, "design request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.Newf(apperrors.ErrCodeDesignServiceFailed,
			"design service returned status %d", resp.StatusCode).WithDetail(string(body))
	}

	var decoded designResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode design response")
	}
	if len(decoded.Sequences) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeDesignEmptyResult, "design service returned no sequences")
	}

	proposals := make([]evolution.Proposal, 0, len(decoded.Sequences))
	for _, s := range decoded.Sequences {
		seq := protein.Sequence(s.Sequence)
		if seq.Validate() != nil {
			d.log.Warn("discarding invalid remote sequence",
				logging.Int("length", seq.Len()))
			continue
		}
		prov := s.Provenance
		if prov == "" {
			prov = "remote_design"
		}
		proposals = append(proposals, evolution.Proposal{Sequence: seq, Provenance: prov})
	}
	d.log.Debug("design service responded",
		logging.Int("usable", len(proposals)),
		logging.Duration("elapsed", time.Since(start)))
	return proposals, nil
}
