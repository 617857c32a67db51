package structure

import (
	"strings"

	"github.com/messiay/protein-refinary/pkg/types/protein"
)

// Coordinate field offsets within an ATOM record.
const (
	coordXFrom, coordXTo = 30, 38
	coordYFrom, coordYTo = 38, 46
	coordZFrom, coordZTo = 46, 54
)

// EstimateSite computes the docking-box parameters for a structure: the
// arithmetic mean of all alpha-carbon coordinates as the center, and the
// supplied extent as the box size.  Records with malformed coordinate
// fields are skipped.  A structure with no alpha-carbons yields the origin,
// which callers should treat as "no binding-site information".
func EstimateSite(pdbText string, size protein.Vec3) protein.DockingSite {
	var sum protein.Vec3
	n := 0
	for _, line := range strings.Split(pdbText, "\n") {
		if !strings.HasPrefix(line, "ATOM") || !isAlphaCarbon(line) {
			continue
		}
		x, errX := floatAt(line, coordXFrom, coordXTo)
		y, errY := floatAt(line, coordYFrom, coordYTo)
		z, errZ := floatAt(line, coordZFrom, coordZTo)
		if errX != nil || errY != nil || errZ != nil {
			continue
		}
		sum.X += x
		sum.Y += y
		sum.Z += z
		n++
	}

	site := protein.DockingSite{Size: size}
	if n > 0 {
		site.Center = protein.Vec3{
			X: sum.X / float64(n),
			Y: sum.Y / float64(n),
			Z: sum.Z / float64(n),
		}
	}
	return site
}
