package evolution

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/messiay/protein-refinary/internal/domain/evolution"
	"github.com/messiay/protein-refinary/internal/domain/structure"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	"github.com/messiay/protein-refinary/internal/infrastructure/storage/history"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

// RunStatus is the lifecycle state of a managed run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// RunParams are the inputs needed to start a run.
type RunParams struct {
	// InitialPDB is the starting receptor structure.
	InitialPDB string

	// LigandPDBQT is the prepared docking ligand.
	LigandPDBQT string

	VariantsPerGeneration int
	Generations           int
}

// RunSnapshot is a point-in-time, copyable view of a managed run.
type RunSnapshot struct {
	ID                    string                    `json:"id"`
	Status                RunStatus                 `json:"status"`
	StartedAt             time.Time                 `json:"started_at"`
	VariantsPerGeneration int                       `json:"variants_per_generation"`
	Generations           int                       `json:"generations"`
	CompletedGenerations  int                       `json:"completed_generations"`
	BestCandidateID       string                    `json:"best_candidate_id,omitempty"`
	BestAffinity          *float64                  `json:"best_affinity,omitempty"`
	BestStructure         string                    `json:"-"`
	Records               []domain.GenerationRecord `json:"records"`
	Error                 string                    `json:"error,omitempty"`
}

type managedRun struct {
	session *domain.Session
	status  RunStatus
	err     error
	cancel  context.CancelFunc
	done    chan struct{}
}

// Manager starts evolution runs in the background and serves snapshots of
// their progress.  It is the single concurrency boundary over sessions:
// the orchestrator goroutine writes, API readers get copies.
type Manager struct {
	orchestrator *Orchestrator
	history      *history.Store
	log          logging.Logger

	mu   sync.RWMutex
	runs map[string]*managedRun
}

// NewManager builds a run manager.  history may be nil to disable durable
// run records.
func NewManager(orchestrator *Orchestrator, hist *history.Store, log logging.Logger) *Manager {
	return &Manager{
		orchestrator: orchestrator,
		history:      hist,
		log:          log.Named("runs"),
		runs:         make(map[string]*managedRun),
	}
}

// StartRun validates the inputs, creates the session and launches the
// orchestrator in the background.  The returned ID is immediately
// queryable via Snapshot.
func (m *Manager) StartRun(ctx context.Context, params RunParams) (string, error) {
	initial, err := structure.Parse(params.InitialPDB)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeValidation, "initial structure is not usable")
	}

	id := uuid.NewString()
	session, err := domain.NewSession(id, initial, params.LigandPDBQT,
		params.VariantsPerGeneration, params.Generations)
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	run := &managedRun{
		session: session,
		status:  StatusRunning,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	m.mu.Lock()
	m.runs[id] = run
	m.mu.Unlock()

	go m.execute(runCtx, run)
	return id, nil
}

func (m *Manager) execute(ctx context.Context, run *managedRun) {
	defer close(run.done)
	err := m.orchestrator.Run(ctx, run.session)

	m.mu.Lock()
	switch {
	case err == nil:
		run.status = StatusCompleted
	case ctx.Err() != nil:
		run.status = StatusCancelled
		run.err = err
	default:
		run.status = StatusFailed
		run.err = err
	}
	m.mu.Unlock()

	if err != nil {
		m.log.Warn("run ended early",
			logging.String("run_id", run.session.ID),
			logging.String("status", string(run.status)),
			logging.Err(err))
	}
	m.persist(run)
}

// persist writes the run summary to the history store, covering completed,
// failed and cancelled runs alike so partial campaigns stay auditable.
func (m *Manager) persist(run *managedRun) {
	if m.history == nil {
		return
	}
	session := run.session
	summary := history.RunSummary{
		ID:                    session.ID,
		StartedAt:             session.StartedAt,
		FinishedAt:            time.Now().UTC(),
		VariantsPerGeneration: session.VariantsPerGeneration,
		Generations:           session.Generations,
	}
	if best, ok := session.BestCandidate(); ok {
		summary.BestCandidateID = best.ID
		summary.BestAffinity = best.Affinity
	}
	for _, rec := range session.Records() {
		summary.Records = append(summary.Records, history.GenerationSummary{
			Index:          rec.Index,
			CandidateCount: len(rec.Candidates),
			BestID:         rec.Best.ID,
			BestAffinity:   rec.Best.Affinity,
			Origin:         string(rec.ProposalOrigin),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.history.SaveRun(ctx, summary); err != nil {
		m.log.Warn("failed to persist run summary",
			logging.String("run_id", session.ID),
			logging.Err(err))
	}
}

// CancelRun requests cancellation of a running run.
func (m *Manager) CancelRun(id string) error {
	m.mu.RLock()
	run, ok := m.runs[id]
	m.mu.RUnlock()
	if !ok {
		return apperrors.Newf(apperrors.ErrCodeSessionNotFound, "run %s not found", id)
	}
	run.cancel()
	return nil
}

// Wait blocks until the run finishes, for callers that need synchronous
// semantics over the background execution.
func (m *Manager) Wait(id string) error {
	m.mu.RLock()
	run, ok := m.runs[id]
	m.mu.RUnlock()
	if !ok {
		return apperrors.Newf(apperrors.ErrCodeSessionNotFound, "run %s not found", id)
	}
	<-run.done
	m.mu.RLock()
	defer m.mu.RUnlock()
	return run.err
}

// Snapshot returns a copyable view of one run.
func (m *Manager) Snapshot(id string) (RunSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return RunSnapshot{}, apperrors.Newf(apperrors.ErrCodeSessionNotFound, "run %s not found", id)
	}
	return m.snapshotLocked(run), nil
}

// List returns snapshots of every known run, unordered.
func (m *Manager) List() []RunSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RunSnapshot, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, m.snapshotLocked(run))
	}
	return out
}

func (m *Manager) snapshotLocked(run *managedRun) RunSnapshot {
	session := run.session
	snap := RunSnapshot{
		ID:                    session.ID,
		Status:                run.status,
		StartedAt:             session.StartedAt,
		VariantsPerGeneration: session.VariantsPerGeneration,
		Generations:           session.Generations,
		CompletedGenerations:  session.CompletedGenerations(),
		Records:               append([]domain.GenerationRecord(nil), session.Records()...),
	}
	if best, ok := session.BestCandidate(); ok {
		affinity := best.Affinity
		snap.BestCandidateID = best.ID
		snap.BestAffinity = &affinity
		if best.Structure != nil {
			snap.BestStructure = best.Structure.Raw()
		}
	}
	if run.err != nil {
		snap.Error = run.err.Error()
	}
	return snap
}
