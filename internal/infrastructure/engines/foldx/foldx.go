// Package foldx adapts the FoldX command line tool to the stability scorer
// port.  The engine is known to exit nonzero while still producing a usable
// report, so a failed run is inspected for partial output before the
// neutral default score is applied.
package foldx

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/domain/evolution"
	"github.com/messiay/protein-refinary/internal/infrastructure/engines"
	"github.com/messiay/protein-refinary/internal/infrastructure/engines/scratch"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

const (
	inputFile  = "protein.pdb"
	reportFile = "protein_Stability.txt"

	// rotamerFile must sit next to the input inside the workspace; the
	// engine resolves it relative to its working directory.
	rotamerFile = "rotabase.txt"

	// defaultScore is the neutral stability used when no report could be
	// parsed.  Selection runs on affinity, so a neutral default keeps the
	// candidate comparable without rewarding a broken run.
	defaultScore = 0.0
)

var (
	binFallbacks = []string{"foldx", "foldx.exe", "server/bin/foldx", "server/bin/foldx.exe"}

	// totalEnergyRe matches the "Total = <value>" line of the report.
	totalEnergyRe = regexp.MustCompile(`Total\s*=\s*(-?[\d.]+)`)
)

// Engine runs stability jobs against a local FoldX installation.
type Engine struct {
	cfg      config.FoldXConfig
	tempRoot string
	log      logging.Logger
}

func New(cfg config.FoldXConfig, tempRoot string, log logging.Logger) *Engine {
	return &Engine{cfg: cfg, tempRoot: tempRoot, log: log.Named("foldx")}
}

// Score writes the structure into a scratch directory, stages the rotamer
// library, and invokes the engine.  Only environmental problems fail the
// call; a missing or unparsable report yields the default score with
// Defaulted set.
func (e *Engine) Score(ctx context.Context, pdbText string) (evolution.StabilityResult, error) {
	bin, err := engines.LocateBinary(e.cfg.BinPath, binFallbacks, "foldx")
	if err != nil {
		return evolution.StabilityResult{}, apperrors.Wrap(err, apperrors.ErrCodeStabilityFailed,
			"stability engine binary not found")
	}

	ws, err := scratch.New(e.tempRoot, "stability")
	if err != nil {
		return evolution.StabilityResult{}, apperrors.Wrap(err, apperrors.ErrCodeStabilityFailed,
			"failed to prepare stability workspace")
	}
	defer ws.Remove()

	if err := ws.WriteFile(inputFile, pdbText); err != nil {
		return evolution.StabilityResult{}, apperrors.Wrap(err, apperrors.ErrCodeStabilityFailed,
			"failed to stage structure")
	}
	if err := e.stageRotamerLibrary(bin, ws); err != nil {
		e.log.Warn("rotamer library not found, engine may fall back to defaults",
			logging.Err(err))
	}

	args := []string{
		"--command=Stability",
		"--pdb=" + inputFile,
		"--output-dir=.",
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = ws.Dir()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if runErr := cmd.Run(); runErr != nil {
		if ctx.Err() != nil {
			return evolution.StabilityResult{}, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeStabilityFailed,
				"stability scoring cancelled")
		}
		// Partial reports on nonzero exit are routine for this engine.
		e.log.Warn("stability engine exited with error, checking for partial report",
			logging.Err(runErr),
			logging.String("stderr", strings.TrimSpace(stderr.String())))
	}

	report, err := ws.ReadFile(reportFile)
	if err != nil {
		e.log.Warn("stability report missing, using default score")
		return evolution.StabilityResult{Score: defaultScore, Defaulted: true}, nil
	}
	score, ok := parseTotalEnergy(report)
	if !ok {
		e.log.Warn("stability report unparsable, using default score")
		return evolution.StabilityResult{Score: defaultScore, Defaulted: true}, nil
	}
	return evolution.StabilityResult{Score: score}, nil
}

// stageRotamerLibrary copies rotabase.txt into the workspace.  The
// configured override is tried first, then the binary's directory, then the
// process working directory.
func (e *Engine) stageRotamerLibrary(bin string, ws *scratch.Workspace) error {
	candidates := []string{}
	if e.cfg.RotabasePath != "" {
		candidates = append(candidates, e.cfg.RotabasePath)
	}
	candidates = append(candidates, filepath.Join(filepath.Dir(bin), rotamerFile), rotamerFile)

	for _, src := range candidates {
		if err := copyFile(src, ws.Path(rotamerFile)); err == nil {
			return nil
		}
	}
	return apperrors.New(apperrors.ErrCodeStabilityNoRotamer, "rotamer library not found")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

func parseTotalEnergy(report string) (float64, bool) {
	m := totalEnergyRe.FindStringSubmatch(report)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
