// Package vina adapts the AutoDock Vina command line tool to the docking
// scorer port.  Each call runs in a private scratch directory that is
// removed unconditionally before the call returns.
package vina

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/domain/evolution"
	"github.com/messiay/protein-refinary/internal/infrastructure/engines"
	"github.com/messiay/protein-refinary/internal/infrastructure/engines/scratch"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
	"github.com/messiay/protein-refinary/pkg/types/protein"
)

const (
	receptorFile = "receptor.pdbqt"
	ligandFile   = "ligand.pdbqt"
	outputFile   = "output.pdbqt"

	// resultMarker prefixes the line carrying the best pose's affinity in
	// the engine's output file.
	resultMarker = "REMARK VINA RESULT"

	// defaultAffinity stands in when no result line can be parsed.  It is
	// deliberately mediocre so a defaulted candidate never outcompetes a
	// genuinely scored one by accident.
	defaultAffinity = -5.0
)

// binary fallbacks probed when the configured path does not exist.
var binFallbacks = []string{"vina", "vina.exe", "server/bin/vina", "server/bin/vina.exe"}

// Engine runs docking jobs against a local Vina installation.
type Engine struct {
	cfg      config.VinaConfig
	tempRoot string
	log      logging.Logger
}

// New builds a docking engine.  Binary resolution is deferred to call time
// so a missing installation surfaces as a per-call error, not a constructor
// failure.
func New(cfg config.VinaConfig, tempRoot string, log logging.Logger) *Engine {
	return &Engine{cfg: cfg, tempRoot: tempRoot, log: log.Named("vina")}
}

// Dock writes the receptor and ligand into a scratch directory, invokes the
// engine against the given site, and parses the best affinity from the
// output file.  A nonzero engine exit is an error.  A clean exit with no
// parsable result line yields the default affinity with Defaulted set.
func (e *Engine) Dock(ctx context.Context, receptorPDBQT, ligandPDBQT string, site protein.DockingSite) (evolution.DockingResult, error) {
	bin, err := engines.LocateBinary(e.cfg.BinPath, binFallbacks, "vina")
	if err != nil {
		return evolution.DockingResult{}, err
	}

	ws, err := scratch.New(e.tempRoot, "dock")
	if err != nil {
		return evolution.DockingResult{}, apperrors.Wrap(err, apperrors.ErrCodeDockingScratchDir,
			"failed to prepare docking workspace")
	}
	defer ws.Remove()

	if err := ws.WriteFile(receptorFile, receptorPDBQT); err != nil {
		return evolution.DockingResult{}, apperrors.Wrap(err, apperrors.ErrCodeDockingScratchDir,
			"failed to stage receptor")
	}
	if err := ws.WriteFile(ligandFile, ligandPDBQT); err != nil {
		return evolution.DockingResult{}, apperrors.Wrap(err, apperrors.ErrCodeDockingScratchDir,
			"failed to stage ligand")
	}

	args := []string{
		"--receptor", receptorFile,
		"--ligand", ligandFile,
		"--center_x", formatCoord(site.Center.X),
		"--center_y", formatCoord(site.Center.Y),
		"--center_z", formatCoord(site.Center.Z),
		"--size_x", formatCoord(site.Size.X),
		"--size_y", formatCoord(site.Size.Y),
		"--size_z", formatCoord(site.Size.Z),
		"--out", outputFile,
		"--exhaustiveness", strconv.Itoa(e.cfg.Exhaustiveness),
		"--cpu", strconv.Itoa(e.cfg.CPU),
	}

	e.log.Debug("running docking job",
		logging.String("bin", bin),
		logging.String("workspace", ws.Dir()),
		logging.String("center", site.Center.String()))

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = ws.Dir()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return evolution.DockingResult{}, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeDockingFailed,
				"docking cancelled")
		}
		return evolution.DockingResult{}, apperrors.Wrap(err, apperrors.ErrCodeDockingBadExit,
			"docking engine exited with error").WithDetail(strings.TrimSpace(stderr.String()))
	}

	out, err := ws.ReadFile(outputFile)
	if err != nil {
		e.log.Warn("docking output file missing, using default affinity",
			logging.Err(err))
		return evolution.DockingResult{Affinity: defaultAffinity, Defaulted: true}, nil
	}

	affinity, ok := parseAffinity(out)
	if !ok {
		e.log.Warn("no result line in docking output, using default affinity")
		return evolution.DockingResult{Affinity: defaultAffinity, Defaulted: true, RawOutput: out}, nil
	}
	return evolution.DockingResult{Affinity: affinity, RawOutput: out}, nil
}

// parseAffinity extracts the affinity from the first result line, which has
// the form "REMARK VINA RESULT:   -7.2   0.000   0.000".
func parseAffinity(output string) (float64, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, resultMarker) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return 0, false
		}
		v, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
