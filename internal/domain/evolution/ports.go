package evolution

import (
	"context"

	"github.com/messiay/protein-refinary/internal/domain/structure"
	"github.com/messiay/protein-refinary/pkg/types/protein"
)

// ProposalOrigin distinguishes which path produced a set of sequence
// proposals.  The two-branch result type exists so that callers and tests
// can assert which path executed instead of inferring it from errors.
type ProposalOrigin string

const (
	// OriginRemote marks proposals returned by the remote design service.
	OriginRemote ProposalOrigin = "remote"

	// OriginFallback marks proposals produced by the local mutator after a
	// remote failure.
	OriginFallback ProposalOrigin = "fallback"

	// OriginMixed marks a set assembled from both paths while satisfying
	// the requested count.
	OriginMixed ProposalOrigin = "mixed"
)

// Proposal is one candidate sequence with its provenance tag.
type Proposal struct {
	Sequence   protein.Sequence `json:"sequence"`
	Provenance string           `json:"provenance"`
}

// ProposalSet is the result of a variant-generation request.
type ProposalSet struct {
	Origin    ProposalOrigin `json:"origin"`
	Proposals []Proposal     `json:"proposals"`
}

// Designer produces candidate sequences from a seed structure.  The
// implementation must return at least count proposals or an explicit error;
// a partial list is never returned silently.  Remote failures are
// recoverable at this boundary only: the implementation substitutes the
// local mutator rather than propagating them.
type Designer interface {
	Propose(ctx context.Context, seed *structure.Structure, count int) (ProposalSet, error)
}

// Folder predicts the 3-D structure of a sequence via the remote folding
// service.  Any failure is fatal for the candidate being processed; there
// is no local fallback, because a fabricated structure would invalidate
// downstream docking.
type Folder interface {
	Fold(ctx context.Context, seq protein.Sequence) (*structure.Structure, error)
}

// DockingResult carries a docking score.  Defaulted marks an affinity that
// came from the missing-marker default rather than a parsed engine result,
// so a real score is distinguishable from a masked one.
type DockingResult struct {
	Affinity  float64
	Defaulted bool

	// RawOutput is the engine's result file content, kept for diagnostics.
	RawOutput string
}

// DockingScorer runs the external docking engine for one receptor/ligand
// pair.  A nonzero engine exit is an error and fatal for the candidate.
type DockingScorer interface {
	Dock(ctx context.Context, receptorPDBQT, ligandPDBQT string, site protein.DockingSite) (DockingResult, error)
}

// StabilityResult carries a stability score.  Defaulted marks the neutral
// zero used when the engine report was absent or unparsable.
type StabilityResult struct {
	Score     float64
	Defaulted bool
}

// StabilityScorer runs the external stability engine on a structure.  The
// engine is known to emit partial results even on nonzero exit, so
// implementations only fail on environmental problems (scratch-directory
// setup); scoring problems surface as a defaulted result.
type StabilityScorer interface {
	Score(ctx context.Context, pdbText string) (StabilityResult, error)
}

// BestArchiver persists a generation's best structure.  The local
// implementation writes into the session's output directory and returns the
// file path; optional implementations mirror to object storage.
type BestArchiver interface {
	ArchiveBest(ctx context.Context, sessionID string, generation int, candidateID string, pdbText string) (string, error)
}

// StructureViewer opens a structure file in an external molecular viewer,
// fire-and-forget.
type StructureViewer interface {
	Open(path string) error
}

// FoldCache memoizes folding results by sequence.  Implementations must be
// nil-safe no-ops when caching is disabled; a cache error is never fatal.
type FoldCache interface {
	Get(ctx context.Context, seq protein.Sequence) (string, bool)
	Put(ctx context.Context, seq protein.Sequence, pdbText string)
}
