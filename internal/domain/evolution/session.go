package evolution

import (
	"sync"
	"time"

	"github.com/messiay/protein-refinary/internal/domain/structure"
	"github.com/messiay/protein-refinary/pkg/errors"
)

// Session is the state of one directed-evolution run.  The orchestrator is
// its sole writer; it mutates the session exactly once per completed
// generation via RecordGeneration.  The running-best fields are the only
// cross-generation mutable state and they never retreat to a worse value.
// A session may be read concurrently by status endpoints while the run is
// still in flight, so all mutable state is guarded.
type Session struct {
	// ID uniquely identifies the run; it also names the session's output
	// directory.
	ID string `json:"id"`

	// LigandPDBQT is the docking-format ligand shared by every docking call
	// of the run.
	LigandPDBQT string `json:"-"`

	// VariantsPerGeneration and Generations are the run parameters the
	// session was started with.
	VariantsPerGeneration int `json:"variants_per_generation"`
	Generations           int `json:"generations"`

	// StartedAt is the wall-clock start of the run.
	StartedAt time.Time `json:"started_at"`

	initial *structure.Structure

	mu      sync.RWMutex
	records []GenerationRecord

	bestSet       bool
	bestAffinity  float64
	bestCandidate Candidate
	bestStructure *structure.Structure
}

// NewSession seeds a session with the initial structure and the prepared
// ligand.  The initial structure is the seed for generation one; it carries
// no affinity of its own.
func NewSession(id string, initial *structure.Structure, ligandPDBQT string, variants, generations int) (*Session, error) {
	if initial == nil {
		return nil, errors.InvalidParam("session requires an initial structure")
	}
	if ligandPDBQT == "" {
		return nil, errors.InvalidParam("session requires a prepared ligand")
	}
	if variants < 1 || generations < 1 {
		return nil, errors.InvalidParam("variants and generations must both be ≥ 1")
	}
	return &Session{
		ID:                    id,
		LigandPDBQT:           ligandPDBQT,
		VariantsPerGeneration: variants,
		Generations:           generations,
		StartedAt:             time.Now().UTC(),
		initial:               initial,
	}, nil
}

// SeedStructure returns the structure that seeds the next generation: the
// running best when one exists, otherwise the initial structure.
func (s *Session) SeedStructure() *structure.Structure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bestSet {
		return s.bestStructure
	}
	return s.initial
}

// InitialStructure returns the structure the session was started with.
func (s *Session) InitialStructure() *structure.Structure { return s.initial }

// BestAffinity returns the running-best affinity and whether any generation
// has completed yet.
func (s *Session) BestAffinity() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bestAffinity, s.bestSet
}

// BestCandidate returns the running-best candidate and whether one exists.
func (s *Session) BestCandidate() (Candidate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bestCandidate, s.bestSet
}

// Records returns a copy of the completed generation records in order.
func (s *Session) Records() []GenerationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]GenerationRecord(nil), s.records...)
}

// CompletedGenerations returns how many generations have been recorded.
func (s *Session) CompletedGenerations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Done reports whether the configured generation count has been reached.
func (s *Session) Done() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records) >= s.Generations
}

// RecordGeneration appends a completed generation and advances the running
// best.  The best advances only when this is the first generation or the
// generation's best affinity is strictly lower than the running best; the
// greedy search never regresses to a worse seed.
func (s *Session) RecordGeneration(rec GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) >= s.Generations {
		return errors.New(errors.ErrCodeSessionImmutable,
			"session already completed its configured generation count")
	}
	if len(rec.Candidates) == 0 {
		return errors.New(errors.ErrCodeGenerationEmpty,
			"refusing to record a generation with no candidates")
	}

	s.records = append(s.records, rec)

	if !s.bestSet || rec.Best.Affinity < s.bestAffinity {
		s.bestSet = true
		s.bestAffinity = rec.Best.Affinity
		s.bestCandidate = rec.Best
		s.bestStructure = rec.Best.Structure
	}
	return nil
}
