// Package http exposes the evolution service over a small JSON API: start
// and inspect runs, download best structures, prepare ligands and browse
// run history.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	appevolution "github.com/messiay/protein-refinary/internal/application/evolution"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	"github.com/messiay/protein-refinary/internal/infrastructure/storage/history"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

// LigandPreparer is the slice of the ligand service the API needs.
type LigandPreparer interface {
	Prepare(ctx context.Context, smiles string) (string, error)
}

// Handler carries the API dependencies.  history and preparer may be nil;
// their endpoints then answer 503.
type Handler struct {
	runs     *appevolution.Manager
	history  *history.Store
	preparer LigandPreparer
	log      logging.Logger
}

func NewHandler(runs *appevolution.Manager, hist *history.Store, preparer LigandPreparer, log logging.Logger) *Handler {
	return &Handler{runs: runs, history: hist, preparer: preparer, log: log.Named("http")}
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type startRunRequest struct {
	InitialPDB            string `json:"initial_pdb"`
	LigandPDBQT           string `json:"ligand_pdbqt"`
	LigandSMILES          string `json:"ligand_smiles"`
	VariantsPerGeneration int    `json:"variants_per_generation"`
	Generations           int    `json:"generations"`
}

// startRun launches a run in the background and answers 202 with its ID.
// The ligand may come in ready-docked form or as SMILES to be resolved.
func (h *Handler) startRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.InitialPDB == "" {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "initial_pdb is required")
		return
	}

	ligand := req.LigandPDBQT
	if ligand == "" && req.LigandSMILES != "" {
		if h.preparer == nil {
			writeError(w, http.StatusServiceUnavailable, apperrors.ErrCodeUnavailable,
				"ligand preparation is not configured")
			return
		}
		prepared, err := h.preparer.Prepare(r.Context(), req.LigandSMILES)
		if err != nil {
			writeAppError(w, err)
			return
		}
		ligand = prepared
	}
	if ligand == "" {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeValidation,
			"one of ligand_pdbqt or ligand_smiles is required")
		return
	}

	id, err := h.runs.StartRun(r.Context(), appevolution.RunParams{
		InitialPDB:            req.InitialPDB,
		LigandPDBQT:           ligand,
		VariantsPerGeneration: req.VariantsPerGeneration,
		Generations:           req.Generations,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.log.Info("run started via API", logging.String("run_id", id))
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

func (h *Handler) listRuns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"runs": h.runs.List()})
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	snap, err := h.runs.Snapshot(r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) cancelRun(w http.ResponseWriter, r *http.Request) {
	if err := h.runs.CancelRun(r.PathValue("id")); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// getBestStructure streams the running best structure as PDB text.
func (h *Handler) getBestStructure(w http.ResponseWriter, r *http.Request) {
	snap, err := h.runs.Snapshot(r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if snap.BestStructure == "" {
		writeError(w, http.StatusNotFound, apperrors.ErrCodeNotFound,
			"run has no completed generation yet")
		return
	}
	w.Header().Set("Content-Type", "chemical/x-pdb")
	w.Header().Set("Content-Disposition", `attachment; filename="`+snap.BestCandidateID+`.pdb"`)
	_, _ = w.Write([]byte(snap.BestStructure))
}

type prepareLigandRequest struct {
	SMILES string `json:"smiles"`
}

func (h *Handler) prepareLigand(w http.ResponseWriter, r *http.Request) {
	if h.preparer == nil {
		writeError(w, http.StatusServiceUnavailable, apperrors.ErrCodeUnavailable,
			"ligand preparation is not configured")
		return
	}
	var req prepareLigandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeBadRequest, "invalid JSON body")
		return
	}
	pdbqt, err := h.preparer.Prepare(r.Context(), req.SMILES)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"pdbqt": pdbqt})
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, apperrors.ErrCodeUnavailable,
			"run history is not configured")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	runs, err := h.history.ListRuns(r.Context(), limit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *Handler) getHistoryRun(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, apperrors.ErrCodeUnavailable,
			"run history is not configured")
		return
	}
	run, err := h.history.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
