package structure

import "strings"

// Docking-format column layout.  The consuming engine rejects malformed
// column layouts outright, so these widths must be reproduced exactly.
const (
	pdbqtCoreWidth   = 66 // original positional columns, truncated/padded
	pdbqtPadWidth    = 70 // blank columns 67-70
	pdbqtCharge      = " +0.00"
	pdbqtElementCols = 2
)

// ConvertToPDBQT transforms generic atom-record text into the fixed-column
// docking format.  Only ATOM/HETATM lines are retained, in original order.
// Each retained line is truncated/padded to 66 characters, padded to 70,
// given the partial-charge placeholder, one space, and a 2-character
// right-padded element code.  The function is pure: equal input always
// yields equal output.
func ConvertToPDBQT(pdbText string) string {
	var out []string
	for _, line := range strings.Split(pdbText, "\n") {
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}

		clean := line
		if len(clean) > pdbqtCoreWidth {
			clean = clean[:pdbqtCoreWidth]
		}
		clean = padRight(clean, pdbqtCoreWidth)
		clean = padRight(clean, pdbqtPadWidth)
		clean += pdbqtCharge
		clean += " "
		clean += elementCode(line)

		out = append(out, clean)
	}
	return strings.Join(out, "\n")
}

// elementCode derives the 2-character element-type field: the declared
// element columns when present, else the first alphabetic character of the
// atom-name field, else carbon.
func elementCode(line string) string {
	element := ""
	if len(line) >= 78 {
		element = strings.TrimSpace(line[76:78])
	}
	if element == "" && len(line) > 14 {
		element = firstAlpha(sliceAt(line, 12, 16))
	}
	if element == "" {
		element = "C"
	}
	element = strings.ToUpper(element)
	if len(element) > pdbqtElementCols {
		element = element[:pdbqtElementCols]
	}
	return padRight(element, pdbqtElementCols)
}

// firstAlpha returns the first alphabetic character of s, or "".
func firstAlpha(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			return string(c)
		}
	}
	return ""
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
