package evolution

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/messiay/protein-refinary/internal/domain/structure"
	"github.com/messiay/protein-refinary/pkg/errors"
	"github.com/messiay/protein-refinary/pkg/types/protein"
)

func testStructure(t *testing.T, resNames ...string) *structure.Structure {
	t.Helper()
	var lines []string
	for i, name := range resNames {
		lines = append(lines, fmt.Sprintf("ATOM  %5d  CA  %-3s %1s%4d    %8.3f%8.3f%8.3f  1.00  0.00           C",
			i+1, name, "A", i+1, float64(i), float64(i), float64(i)))
	}
	s, err := structure.Parse(strings.Join(lines, "\n"))
	require.NoError(t, err)
	return s
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession("run_1", testStructure(t, "MET", "GLY"), "HETATM ligand", 2, 3)
	require.NoError(t, err)
	return s
}

func TestCandidateID(t *testing.T) {
	assert.Equal(t, "G1_V1", CandidateID(1, 1))
	assert.Equal(t, "G3_V12", CandidateID(3, 12))
}

func TestSelectBest(t *testing.T) {
	best, err := SelectBest([]Candidate{
		{ID: "G1_V1", Affinity: -5.0},
		{ID: "G1_V2", Affinity: -7.2},
		{ID: "G1_V3", Affinity: -6.1},
	})
	require.NoError(t, err)
	assert.Equal(t, "G1_V2", best.ID)
}

func TestSelectBestFirstOccurrenceTieBreak(t *testing.T) {
	best, err := SelectBest([]Candidate{
		{ID: "G1_V1", Affinity: -7.2},
		{ID: "G1_V2", Affinity: -7.2},
	})
	require.NoError(t, err)
	assert.Equal(t, "G1_V1", best.ID)
}

func TestSelectBestEmpty(t *testing.T) {
	_, err := SelectBest(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGenerationEmpty))
}

func TestNewSessionValidation(t *testing.T) {
	initial := testStructure(t, "MET")

	_, err := NewSession("s", nil, "lig", 1, 1)
	assert.Error(t, err)

	_, err = NewSession("s", initial, "", 1, 1)
	assert.Error(t, err)

	_, err = NewSession("s", initial, "lig", 0, 1)
	assert.Error(t, err)
}

func TestSessionSeedBeforeFirstGeneration(t *testing.T) {
	s := newTestSession(t)
	assert.Same(t, s.InitialStructure(), s.SeedStructure())

	_, ok := s.BestAffinity()
	assert.False(t, ok)
}

func TestSessionRunningBestMonotone(t *testing.T) {
	s := newTestSession(t)

	gen1Best := testStructure(t, "ALA")
	require.NoError(t, s.RecordGeneration(GenerationRecord{
		Index:      1,
		Candidates: []Candidate{{ID: "G1_V1", Affinity: -5.0, Structure: gen1Best}},
		Best:       Candidate{ID: "G1_V1", Affinity: -5.0, Structure: gen1Best},
	}))

	aff, ok := s.BestAffinity()
	require.True(t, ok)
	assert.Equal(t, -5.0, aff)
	assert.Same(t, gen1Best, s.SeedStructure())

	// A worse generation must not move the running best.
	worse := testStructure(t, "TRP")
	require.NoError(t, s.RecordGeneration(GenerationRecord{
		Index:      2,
		Candidates: []Candidate{{ID: "G2_V1", Affinity: -3.0, Structure: worse}},
		Best:       Candidate{ID: "G2_V1", Affinity: -3.0, Structure: worse},
	}))
	aff, _ = s.BestAffinity()
	assert.Equal(t, -5.0, aff)
	assert.Same(t, gen1Best, s.SeedStructure())

	// A strictly better one advances it.
	better := testStructure(t, "LYS")
	require.NoError(t, s.RecordGeneration(GenerationRecord{
		Index:      3,
		Candidates: []Candidate{{ID: "G3_V1", Affinity: -7.2, Structure: better}},
		Best:       Candidate{ID: "G3_V1", Affinity: -7.2, Structure: better},
	}))
	aff, _ = s.BestAffinity()
	assert.Equal(t, -7.2, aff)
	assert.Same(t, better, s.SeedStructure())

	assert.True(t, s.Done())
	assert.Equal(t, 3, s.CompletedGenerations())
}

func TestSessionEqualAffinityDoesNotAdvanceBest(t *testing.T) {
	s := newTestSession(t)

	first := testStructure(t, "ALA")
	second := testStructure(t, "GLY")
	require.NoError(t, s.RecordGeneration(GenerationRecord{
		Index:      1,
		Candidates: []Candidate{{ID: "G1_V1", Affinity: -5.0, Structure: first}},
		Best:       Candidate{ID: "G1_V1", Affinity: -5.0, Structure: first},
	}))
	require.NoError(t, s.RecordGeneration(GenerationRecord{
		Index:      2,
		Candidates: []Candidate{{ID: "G2_V1", Affinity: -5.0, Structure: second}},
		Best:       Candidate{ID: "G2_V1", Affinity: -5.0, Structure: second},
	}))

	best, ok := s.BestCandidate()
	require.True(t, ok)
	assert.Equal(t, "G1_V1", best.ID)
	assert.Same(t, first, s.SeedStructure())
}

func TestSessionRejectsEmptyGeneration(t *testing.T) {
	s := newTestSession(t)
	err := s.RecordGeneration(GenerationRecord{Index: 1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGenerationEmpty))
}

func TestSessionRejectsRecordsAfterDone(t *testing.T) {
	s, err := NewSession("run_1", testStructure(t, "MET"), "lig", 1, 1)
	require.NoError(t, err)

	rec := GenerationRecord{
		Index:      1,
		Candidates: []Candidate{{ID: "G1_V1", Affinity: -1}},
		Best:       Candidate{ID: "G1_V1", Affinity: -1},
	}
	require.NoError(t, s.RecordGeneration(rec))
	assert.True(t, errors.IsCode(s.RecordGeneration(rec), errors.ErrCodeSessionImmutable))
}

func TestMutatorDeterministicWithSeed(t *testing.T) {
	seq := protein.Sequence(strings.Repeat("A", 50))
	a := NewMutator(0.1, 42).Mutate(seq)
	b := NewMutator(0.1, 42).Mutate(seq)
	assert.Equal(t, a, b)
	assert.NotEqual(t, seq, a)
	assert.Equal(t, seq.Len(), a.Len())
}

func TestMutatorAlwaysMutatesAtLeastOnePosition(t *testing.T) {
	m := NewMutator(0.1, 7)
	seq := protein.Sequence("MG") // 10% of 2 rounds to 0, floor is 1
	mutated := m.Mutate(seq)
	assert.Equal(t, 2, mutated.Len())
}

func TestMutatorEmptySequence(t *testing.T) {
	m := NewMutator(0.1, 1)
	assert.Equal(t, protein.Sequence(""), m.Mutate(""))
}

func TestMutatorPropose(t *testing.T) {
	m := NewMutator(0.1, 42)
	proposals := m.Propose(protein.Sequence(strings.Repeat("G", 30)), 5)
	require.Len(t, proposals, 5)
	for _, p := range proposals {
		assert.Equal(t, FallbackProvenance, p.Provenance)
		assert.NoError(t, p.Sequence.Validate())
	}
}

func TestMutatorRejectsBadRate(t *testing.T) {
	// Out-of-range rates fall back to the default rather than panicking.
	m := NewMutator(5.0, 42)
	seq := protein.Sequence(strings.Repeat("A", 100))
	assert.Equal(t, 100, m.Mutate(seq).Len())
}
