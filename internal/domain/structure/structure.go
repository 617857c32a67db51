// Package structure provides the molecular-structure domain model: parsing
// of atom-record text, the docking-format codec, binding-site estimation,
// and residue-sequence extraction.  A Structure is immutable once produced;
// it is only transformed into new values or consumed by scorers.
package structure

import (
	"sort"
	"strconv"
	"strings"

	"github.com/messiay/protein-refinary/pkg/errors"
	"github.com/messiay/protein-refinary/pkg/types/protein"
)

// AtomRecord is one parsed ATOM/HETATM line.  Field offsets follow the
// fixed-column PDB layout; parsing is tolerant of short or malformed lines
// because predicted structures frequently omit trailing columns.
type AtomRecord struct {
	Serial  int
	Name    string
	ResName string
	ChainID string
	ResSeq  int
	Coord   protein.Vec3
	Element string
	Hetero  bool
}

// Structure is an ordered sequence of atom records plus the verbatim source
// text.  Scorers and the codec consume the raw text so that column layout
// survives untouched; the parsed records serve geometry and sequence
// derivation.
type Structure struct {
	raw   string
	atoms []AtomRecord
}

// Parse builds a Structure from newline-delimited atom-record text.
// Non-ATOM/HETATM lines are retained in the raw text but not parsed.
// Returns an error when no atom records are present at all.
func Parse(text string) (*Structure, error) {
	s := &Structure{raw: text}
	for _, line := range strings.Split(text, "\n") {
		isAtom := strings.HasPrefix(line, "ATOM")
		isHet := strings.HasPrefix(line, "HETATM")
		if !isAtom && !isHet {
			continue
		}
		rec := parseAtomLine(line)
		rec.Hetero = isHet
		s.atoms = append(s.atoms, rec)
	}
	if len(s.atoms) == 0 {
		return nil, errors.New(errors.ErrCodeStructureEmpty, "structure contains no ATOM/HETATM records")
	}
	return s, nil
}

// MustParse is Parse for inputs known to be valid, primarily tests.
func MustParse(text string) *Structure {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

// parseAtomLine extracts the fixed-column fields that the pipeline needs.
// Missing or unparsable columns yield zero values rather than errors.
func parseAtomLine(line string) AtomRecord {
	rec := AtomRecord{
		Serial:  atoiAt(line, 6, 11),
		Name:    sliceAt(line, 12, 16),
		ResName: sliceAt(line, 17, 20),
		ChainID: sliceAt(line, 21, 22),
		ResSeq:  atoiAt(line, 22, 26),
		Element: sliceAt(line, 76, 78),
	}
	rec.Coord.X, _ = floatAt(line, 30, 38)
	rec.Coord.Y, _ = floatAt(line, 38, 46)
	rec.Coord.Z, _ = floatAt(line, 46, 54)
	return rec
}

// Raw returns the verbatim structure text.
func (s *Structure) Raw() string { return s.raw }

// Atoms returns the parsed atom records in original order.  The returned
// slice must not be mutated.
func (s *Structure) Atoms() []AtomRecord { return s.atoms }

// AtomCount returns the number of ATOM/HETATM records.
func (s *Structure) AtomCount() int { return len(s.atoms) }

// Sequence derives the one-letter residue sequence from the structure's
// alpha-carbon records, ordered by residue number.  Residues whose number
// fails to parse are skipped; duplicate residue numbers keep the last
// occurrence.  Returns an error when the structure has no alpha-carbons.
func (s *Structure) Sequence() (protein.Sequence, error) {
	residues := map[int]byte{}
	var order []int
	for _, line := range strings.Split(s.raw, "\n") {
		if !strings.HasPrefix(line, "ATOM") || !isAlphaCarbon(line) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSpace(sliceAt(line, 22, 26)))
		if err != nil {
			continue
		}
		if _, seen := residues[num]; !seen {
			order = append(order, num)
		}
		residues[num] = protein.ResidueOneLetter(sliceAt(line, 17, 20))
	}
	if len(residues) == 0 {
		return "", errors.New(errors.ErrCodeStructureNoResidues, "structure has no alpha-carbon records")
	}

	sort.Ints(order)
	seq := make([]byte, len(order))
	for i, num := range order {
		seq[i] = residues[num]
	}
	return protein.Sequence(seq), nil
}

// isAlphaCarbon reports whether the line's atom-name columns carry the
// alpha-carbon marker at the fixed offset 13:15.
func isAlphaCarbon(line string) bool {
	return len(line) >= 15 && line[13:15] == "CA"
}

// sliceAt returns line[from:to], clipped to the line's length.
func sliceAt(line string, from, to int) string {
	if len(line) <= from {
		return ""
	}
	if len(line) < to {
		to = len(line)
	}
	return line[from:to]
}

func atoiAt(line string, from, to int) int {
	n, _ := strconv.Atoi(strings.TrimSpace(sliceAt(line, from, to)))
	return n
}

func floatAt(line string, from, to int) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(sliceAt(line, from, to)), 64)
}
