// Package local persists each generation's best structure under the
// session's output directory, mirroring the layout operators browse by
// hand: <output_root>/run_<session>/<candidate>.pdb.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

// OutputStore writes best structures to the local filesystem.
type OutputStore struct {
	root string
	log  logging.Logger
}

func NewOutputStore(root string, log logging.Logger) *OutputStore {
	return &OutputStore{root: root, log: log.Named("outputs")}
}

// ArchiveBest writes the structure and returns its absolute path.
func (s *OutputStore) ArchiveBest(ctx context.Context, sessionID string, generation int, candidateID string, pdbText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeStorageError, "archive cancelled")
	}

	dir := filepath.Join(s.root, fmt.Sprintf("run_%s", sessionID))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeStorageError, "failed to create session output directory")
	}
	path := filepath.Join(dir, candidateID+".pdb")
	if err := os.WriteFile(path, []byte(pdbText), 0o640); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeStorageError, "failed to write best structure")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	s.log.Info("archived generation best",
		logging.String("session_id", sessionID),
		logging.Int("generation", generation),
		logging.String("path", abs))
	return abs, nil
}
