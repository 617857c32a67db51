package evolution

import (
	"math/rand"
	"sync"
	"time"

	"github.com/messiay/protein-refinary/pkg/types/protein"
)

// FallbackProvenance tags sequences produced by the local mutator.
const FallbackProvenance = "local_fallback"

// Mutator is the local fallback variant generator: it perturbs a fraction
// of randomly chosen positions to uniformly random standard residues.  It
// stands in for the remote design service when that service is unavailable,
// so a run can always make progress.
type Mutator struct {
	rate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMutator constructs a Mutator with the given per-sequence mutation
// rate.  A seed of 0 derives one from the wall clock; any other value makes
// the mutator fully deterministic.
func NewMutator(rate float64, seed int64) *Mutator {
	if rate <= 0 || rate > 1 {
		rate = 0.10
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Mutator{
		rate: rate,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Mutate returns a copy of seq with at least one position replaced by a
// uniformly random standard residue.  Positions are drawn with replacement,
// so the realized mutation count may be lower than rate*len.
func (m *Mutator) Mutate(seq protein.Sequence) protein.Sequence {
	if len(seq) == 0 {
		return seq
	}

	n := int(float64(len(seq)) * m.rate)
	if n < 1 {
		n = 1
	}

	chars := []byte(seq)
	m.mu.Lock()
	for i := 0; i < n; i++ {
		pos := m.rng.Intn(len(chars))
		chars[pos] = protein.StandardResidues[m.rng.Intn(len(protein.StandardResidues))]
	}
	m.mu.Unlock()
	return protein.Sequence(chars)
}

// Propose produces count fallback proposals from the seed sequence, each
// tagged with FallbackProvenance.
func (m *Mutator) Propose(seq protein.Sequence, count int) []Proposal {
	proposals := make([]Proposal, 0, count)
	for i := 0; i < count; i++ {
		proposals = append(proposals, Proposal{
			Sequence:   m.Mutate(seq),
			Provenance: FallbackProvenance,
		})
	}
	return proposals
}
