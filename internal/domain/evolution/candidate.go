// Package evolution provides the directed-evolution domain model: candidate
// variants, per-generation records, the greedy selection policy, and the
// session state that carries the running best across generations.
package evolution

import (
	"fmt"

	"github.com/messiay/protein-refinary/internal/domain/structure"
	"github.com/messiay/protein-refinary/pkg/errors"
	"github.com/messiay/protein-refinary/pkg/types/protein"
)

// Candidate is one proposed sequence variant within a generation, together
// with its predicted structure and scores.  A Candidate is created once,
// scored once, and never re-scored; lower affinity means better binding.
type Candidate struct {
	// ID is the human-readable variant identifier, e.g. "G2_V1".
	ID string `json:"id"`

	// Generation is the 1-based generation index the candidate belongs to.
	Generation int `json:"generation"`

	// Sequence is the proposed amino-acid sequence.
	Sequence protein.Sequence `json:"sequence"`

	// Provenance tags how the sequence was produced: the design service's
	// own tag, or the local-fallback marker.
	Provenance string `json:"provenance"`

	// Structure is the predicted conformation for Sequence.
	Structure *structure.Structure `json:"-"`

	// Affinity is the docking score.  AffinityDefaulted marks a value that
	// came from the engine's missing-marker default rather than a parsed
	// result.
	Affinity          float64 `json:"affinity"`
	AffinityDefaulted bool    `json:"affinity_defaulted"`

	// Stability is the structural free-energy estimate.  A defaulted value
	// of zero means the stability report was absent or unparsable.
	Stability          float64 `json:"stability"`
	StabilityDefaulted bool    `json:"stability_defaulted"`
}

// CandidateID renders the canonical variant identifier for a generation and
// variant index, both 1-based.
func CandidateID(generation, variant int) string {
	return fmt.Sprintf("G%d_V%d", generation, variant)
}

// GenerationRecord captures one completed generation: every scored candidate
// in processing order, and the selected best.
type GenerationRecord struct {
	// Index is the 1-based generation index.
	Index int `json:"index"`

	// Candidates holds every candidate that survived scoring, in the order
	// they were processed.
	Candidates []Candidate `json:"candidates"`

	// Best is the candidate with the numerically lowest affinity; ties keep
	// the first occurrence.
	Best Candidate `json:"best"`

	// ProposalOrigin records whether the generation's sequences came from
	// the remote design service or the local fallback mutator.
	ProposalOrigin ProposalOrigin `json:"proposal_origin"`
}

// SelectBest applies the greedy selection policy: the candidate with the
// minimal affinity wins, and ties are broken by first occurrence.  An empty
// candidate list is a generation-level failure, never a silent reuse of a
// previous best.
func SelectBest(candidates []Candidate) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, errors.New(errors.ErrCodeGenerationEmpty,
			"generation produced no scorable candidates")
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Affinity < best.Affinity {
			best = c
		}
	}
	return best, nil
}
