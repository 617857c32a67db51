// Package protein defines shared value types for protein structures, docking
// geometry, and amino-acid sequences.  No behaviour beyond validation and
// small conversions lives here.
package protein

import (
	"fmt"
	"strings"
)

// Vec3 is a point or extent in 3-D space, in Angstroms.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Origin is the zero point.
var Origin = Vec3{}

// String renders the vector with the precision the docking engine CLI expects.
func (v Vec3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

// DockingSite parameterizes a docking run: the search-box center and extent.
// It is derived once per structure and never mutated afterwards.
type DockingSite struct {
	Center Vec3 `json:"center"`
	Size   Vec3 `json:"size"`
}

// DefaultBoxSize is the fallback search-box extent used when no
// structure-derived extent is configured.
var DefaultBoxSize = Vec3{X: 20, Y: 20, Z: 20}

// StandardResidues is the one-letter alphabet of the 20 standard amino acids.
const StandardResidues = "ACDEFGHIKLMNPQRSTVWY"

// threeToOne maps PDB residue names to one-letter codes.
var threeToOne = map[string]byte{
	"ALA": 'A', "CYS": 'C', "ASP": 'D', "GLU": 'E', "PHE": 'F',
	"GLY": 'G', "HIS": 'H', "ILE": 'I', "LYS": 'K', "LEU": 'L',
	"MET": 'M', "ASN": 'N', "PRO": 'P', "GLN": 'Q', "ARG": 'R',
	"SER": 'S', "THR": 'T', "VAL": 'V', "TRP": 'W', "TYR": 'Y',
}

// ResidueOneLetter converts a three-letter residue name to its one-letter
// code.  Unknown names map to 'X', matching common bioinformatics practice.
func ResidueOneLetter(name string) byte {
	if c, ok := threeToOne[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return c
	}
	return 'X'
}

// Sequence is a one-letter amino-acid sequence.
type Sequence string

// Validate checks that the sequence is non-empty and drawn from the standard
// alphabet plus the unknown marker 'X'.
func (s Sequence) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("sequence is empty")
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == 'X' || strings.IndexByte(StandardResidues, c) >= 0 {
			continue
		}
		return fmt.Errorf("sequence contains invalid residue %q at position %d", c, i)
	}
	return nil
}

// Len returns the residue count.
func (s Sequence) Len() int { return len(s) }
