// Package viewer opens structures in a locally installed ChimeraX.  The
// launch is fire-and-forget: the evolution loop never blocks on, or fails
// because of, the visualisation tool.
package viewer

import (
	"os"
	"os/exec"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

// wellKnownPaths are probed before falling back to $PATH lookup.
var wellKnownPaths = []string{
	"/usr/bin/chimerax",
	"/usr/local/bin/chimerax",
	"/opt/UCSF/ChimeraX/bin/ChimeraX",
	"/Applications/ChimeraX.app/Contents/MacOS/ChimeraX",
	`C:\Program Files\ChimeraX\bin\ChimeraX.exe`,
}

// Launcher starts the external viewer process.
type Launcher struct {
	binPath string
	log     logging.Logger
}

func NewLauncher(cfg config.ViewerConfig, log logging.Logger) *Launcher {
	return &Launcher{binPath: cfg.BinPath, log: log.Named("viewer")}
}

// Open launches the viewer on the given structure file and detaches.  The
// child is reaped in the background so it never lingers as a zombie.
func (l *Launcher) Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeViewerLaunch, "structure file not found").WithDetail(path)
	}
	bin, err := l.locate()
	if err != nil {
		return err
	}

	cmd := exec.Command(bin, path)
	if err := cmd.Start(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeViewerLaunch, "failed to start viewer")
	}
	go func() { _ = cmd.Wait() }()

	l.log.Info("opened structure in viewer",
		logging.String("bin", bin),
		logging.String("path", path))
	return nil
}

func (l *Launcher) locate() (string, error) {
	candidates := wellKnownPaths
	if l.binPath != "" {
		candidates = append([]string{l.binPath}, candidates...)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	for _, name := range []string{"ChimeraX", "chimerax"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", apperrors.New(apperrors.ErrCodeViewerNotFound, "no molecular viewer installation found")
}
