// Package ligand resolves a SMILES string into a docking-ready PDBQT
// block.  Two public chemistry services are tried in order: the NCI
// resolver, which returns a 3-D PDB directly, then PubChem, whose SDF
// conformer is converted locally.
package ligand

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/domain/structure"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

// minUsablePDB filters out error pages that come back with status 200.
const minUsablePDB = 50

// Preparer turns SMILES input into receptor-compatible PDBQT text.
type Preparer struct {
	cactusBase  string
	pubchemBase string
	httpc       *http.Client
	log         logging.Logger
}

func NewPreparer(cfg config.LigandConfig, log logging.Logger) *Preparer {
	return &Preparer{
		cactusBase:  cfg.CactusBaseURL,
		pubchemBase: cfg.PubChemBaseURL,
		httpc:       &http.Client{Timeout: cfg.Timeout},
		log:         log.Named("ligand"),
	}
}

// Prepare resolves the SMILES to a 3-D structure and converts it to PDBQT.
func (p *Preparer) Prepare(ctx context.Context, smiles string) (string, error) {
	smiles = strings.TrimSpace(smiles)
	if smiles == "" {
		return "", apperrors.New(apperrors.ErrCodeLigandInvalidSMILES, "empty SMILES string")
	}

	pdb, err := p.fromCactus(ctx, smiles)
	if err != nil {
		p.log.Warn("primary resolver failed, trying conformer fallback",
			logging.Err(err))
		pdb, err = p.fromPubChem(ctx, smiles)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.ErrCodeLigandNoConformer,
				"no 3-D conformer available for SMILES").WithDetail(smiles)
		}
	}
	return structure.ConvertToPDBQT(pdb), nil
}

// fromCactus fetches a ready-made 3-D PDB from the NCI structure resolver.
func (p *Preparer) fromCactus(ctx context.Context, smiles string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/pdb?get3d=true", strings.TrimRight(p.cactusBase, "/"), url.PathEscape(smiles))
	body, err := p.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	if len(body) < minUsablePDB || strings.Contains(body, "Page not found") {
		return "", apperrors.New(apperrors.ErrCodeLigandPrepFailed, "resolver returned no structure")
	}
	return body, nil
}

// fromPubChem fetches a 3-D SDF record and converts it to PDB locally.
func (p *Preparer) fromPubChem(ctx context.Context, smiles string) (string, error) {
	endpoint := fmt.Sprintf("%s/compound/smiles/%s/SDF?record_type=3d",
		strings.TrimRight(p.pubchemBase, "/"), url.PathEscape(smiles))
	body, err := p.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	pdb, err := sdfToPDB(body)
	if err != nil {
		return "", err
	}
	return pdb, nil
}

func (p *Preparer) get(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeLigandPrepFailed, "failed to build resolver request")
	}
	resp, err := p.httpc.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeLigandPrepFailed, "resolver request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.Newf(apperrors.ErrCodeLigandPrepFailed,
			"resolver returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeLigandPrepFailed, "failed to read resolver response")
	}
	return string(body), nil
}

// sdfToPDB converts the atom block of a V2000 SDF record into HETATM lines.
// Coordinate rows carry three leading floats followed by an element symbol;
// anything else (counts line, bond block, properties) is skipped.
func sdfToPDB(sdf string) (string, error) {
	var b strings.Builder
	serial := 0
	for _, line := range strings.Split(sdf, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || len(fields) > 16 {
			continue
		}
		x, errX := strconv.ParseFloat(fields[0], 64)
		y, errY := strconv.ParseFloat(fields[1], 64)
		z, errZ := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errY != nil || errZ != nil {
			continue
		}
		sym := fields[3]
		if len(sym) > 2 || !isAlphabetic(sym) {
			continue
		}
		serial++
		fmt.Fprintf(&b, "HETATM%5d %-4s LIG A   1    %8.3f%8.3f%8.3f  1.00  0.00          %2s\n",
			serial, strings.ToUpper(sym), x, y, z, strings.ToUpper(sym))
	}
	if serial == 0 {
		return "", apperrors.New(apperrors.ErrCodeLigandPrepFailed, "no atom records in SDF response")
	}
	b.WriteString("END\n")
	return b.String(), nil
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return s != ""
}
