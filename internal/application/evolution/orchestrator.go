// Package evolution drives the directed-evolution loop: propose variants,
// fold them, dock them against the ligand, score stability, select the best
// and carry it into the next generation.
package evolution

import (
	"context"
	"sync"
	"time"

	domain "github.com/messiay/protein-refinary/internal/domain/evolution"
	"github.com/messiay/protein-refinary/internal/domain/structure"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
	"github.com/messiay/protein-refinary/pkg/types/protein"
)

// Orchestrator wires the scoring pipeline around a session.  It is
// stateless between runs; all run state lives in the Session.
type Orchestrator struct {
	designer  domain.Designer
	folder    domain.Folder
	docker    domain.DockingScorer
	stability domain.StabilityScorer
	archivers []domain.BestArchiver
	viewer    domain.StructureViewer
	cache     domain.FoldCache

	boxSize     protein.Vec3
	parallelism int
	autoView    bool

	metrics *prometheus.Metrics
	log     logging.Logger
}

// Options carries the orchestrator's tunables.
type Options struct {
	// BoxSize is the docking search-box extent passed to site estimation.
	BoxSize protein.Vec3

	// Parallelism bounds concurrent variant scoring within a generation.
	// Values below 2 keep processing strictly sequential.
	Parallelism int

	// AutoView opens each generation's best structure in the viewer.
	AutoView bool
}

// New assembles an orchestrator.  Viewer and cache may be nil; archivers
// run in order and the first returned path feeds the viewer.
func New(
	designer domain.Designer,
	folder domain.Folder,
	docker domain.DockingScorer,
	stability domain.StabilityScorer,
	archivers []domain.BestArchiver,
	viewer domain.StructureViewer,
	cache domain.FoldCache,
	opts Options,
	metrics *prometheus.Metrics,
	log logging.Logger,
) *Orchestrator {
	if cache == nil {
		cache = nopCache{}
	}
	if metrics == nil {
		metrics = prometheus.NewNop()
	}
	boxSize := opts.BoxSize
	if boxSize.X <= 0 || boxSize.Y <= 0 || boxSize.Z <= 0 {
		boxSize = protein.DefaultBoxSize
	}
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	return &Orchestrator{
		designer:    designer,
		folder:      folder,
		docker:      docker,
		stability:   stability,
		archivers:   archivers,
		viewer:      viewer,
		cache:       cache,
		boxSize:     boxSize,
		parallelism: parallelism,
		autoView:    opts.AutoView,
		metrics:     metrics,
		log:         log.Named("orchestrator"),
	}
}

// Run executes every remaining generation of the session.  It stops early
// only on context cancellation or a generation-level failure; per-candidate
// failures are logged and skipped.
func (o *Orchestrator) Run(ctx context.Context, session *domain.Session) error {
	o.log.Info("starting evolution run",
		logging.String("session_id", session.ID),
		logging.Int("variants_per_generation", session.VariantsPerGeneration),
		logging.Int("generations", session.Generations))

	for !session.Done() {
		if err := ctx.Err(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeSessionAborted, "run cancelled at generation boundary")
		}
		genIndex := session.CompletedGenerations() + 1
		if err := o.runGeneration(ctx, session, genIndex); err != nil {
			return err
		}
	}

	best, _ := session.BestCandidate()
	o.log.Info("evolution run finished",
		logging.String("session_id", session.ID),
		logging.String("best_candidate", best.ID),
		logging.Float64("best_affinity", best.Affinity))
	return nil
}

func (o *Orchestrator) runGeneration(ctx context.Context, session *domain.Session, genIndex int) error {
	log := o.log.With(
		logging.String("session_id", session.ID),
		logging.Int("generation", genIndex))
	log.Info("starting generation")

	set, err := o.designer.Propose(ctx, session.SeedStructure(), session.VariantsPerGeneration)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnknown, "variant proposal failed")
	}
	proposals := set.Proposals
	if len(proposals) > session.VariantsPerGeneration {
		proposals = proposals[:session.VariantsPerGeneration]
	}
	if set.Origin != domain.OriginRemote {
		o.metrics.DesignFallbackTotal.Inc()
	}

	candidates, err := o.scoreProposals(ctx, session, genIndex, proposals, log)
	if err != nil {
		return err
	}

	best, err := domain.SelectBest(candidates)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeGenerationEmpty,
			"generation produced no scorable candidates")
	}

	rec := domain.GenerationRecord{
		Index:          genIndex,
		Candidates:     candidates,
		Best:           best,
		ProposalOrigin: set.Origin,
	}
	if err := session.RecordGeneration(rec); err != nil {
		return err
	}

	o.metrics.GenerationsTotal.Inc()
	if affinity, ok := session.BestAffinity(); ok {
		o.metrics.BestAffinity.Set(affinity)
	}
	log.Info("generation complete",
		logging.String("best_candidate", best.ID),
		logging.Float64("best_affinity", best.Affinity),
		logging.Int("candidates", len(candidates)),
		logging.String("proposal_origin", string(set.Origin)))

	o.archiveBest(ctx, session, genIndex, best)
	return nil
}

// scoreProposals processes the generation's proposals and returns the
// candidates that scored successfully, in variant order.
func (o *Orchestrator) scoreProposals(ctx context.Context, session *domain.Session, genIndex int, proposals []domain.Proposal, log logging.Logger) ([]domain.Candidate, error) {
	type slot struct {
		candidate domain.Candidate
		ok        bool
	}
	slots := make([]slot, len(proposals))

	process := func(i int) {
		variantLog := log.With(logging.String("candidate", domain.CandidateID(genIndex, i+1)))
		cand, err := o.scoreVariant(ctx, session, genIndex, i+1, proposals[i], variantLog)
		if err != nil {
			if ctx.Err() == nil {
				variantLog.Error("candidate failed, skipping", logging.Err(err))
				o.metrics.CandidatesTotal.WithLabelValues(prometheus.CandidateFailed).Inc()
			}
			return
		}
		slots[i] = slot{candidate: cand, ok: true}
		o.metrics.CandidatesTotal.WithLabelValues(prometheus.CandidateScored).Inc()
	}

	if o.parallelism < 2 {
		for i := range proposals {
			if ctx.Err() != nil {
				break
			}
			process(i)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, o.parallelism)
		for i := range proposals {
			if ctx.Err() != nil {
				break
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				process(i)
			}(i)
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSessionAborted, "run cancelled mid-generation")
	}

	candidates := make([]domain.Candidate, 0, len(slots))
	for _, s := range slots {
		if s.ok {
			candidates = append(candidates, s.candidate)
		}
	}
	return candidates, nil
}

// scoreVariant runs one proposal through fold, docking and stability.
func (o *Orchestrator) scoreVariant(ctx context.Context, session *domain.Session, genIndex, variant int, p domain.Proposal, log logging.Logger) (domain.Candidate, error) {
	st, err := o.foldSequence(ctx, p.Sequence)
	if err != nil {
		return domain.Candidate{}, err
	}

	receptorPDBQT := structure.ConvertToPDBQT(st.Raw())
	site := structure.EstimateSite(st.Raw(), o.boxSize)

	dockStart := time.Now()
	dockRes, err := o.docker.Dock(ctx, receptorPDBQT, session.LigandPDBQT, site)
	if err != nil {
		return domain.Candidate{}, err
	}
	o.metrics.DockingDuration.Observe(time.Since(dockStart).Seconds())

	stabStart := time.Now()
	stabRes, err := o.stability.Score(ctx, st.Raw())
	if err != nil {
		// Stability is advisory; selection runs on affinity alone.
		log.Warn("stability scoring failed, keeping neutral default", logging.Err(err))
		stabRes = domain.StabilityResult{Score: 0, Defaulted: true}
	}
	o.metrics.StabilityDuration.Observe(time.Since(stabStart).Seconds())

	cand := domain.Candidate{
		ID:                 domain.CandidateID(genIndex, variant),
		Generation:         genIndex,
		Sequence:           p.Sequence,
		Provenance:         p.Provenance,
		Structure:          st,
		Affinity:           dockRes.Affinity,
		AffinityDefaulted:  dockRes.Defaulted,
		Stability:          stabRes.Score,
		StabilityDefaulted: stabRes.Defaulted,
	}
	log.Debug("candidate scored",
		logging.Float64("affinity", cand.Affinity),
		logging.Bool("affinity_defaulted", cand.AffinityDefaulted),
		logging.Float64("stability", cand.Stability))
	return cand, nil
}

func (o *Orchestrator) foldSequence(ctx context.Context, seq protein.Sequence) (*structure.Structure, error) {
	if cached, ok := o.cache.Get(ctx, seq); ok {
		st, err := structure.Parse(cached)
		if err == nil {
			o.metrics.FoldCacheHitsTotal.Inc()
			return st, nil
		}
		o.log.Warn("discarding corrupt fold cache entry", logging.Err(err))
	}

	start := time.Now()
	st, err := o.folder.Fold(ctx, seq)
	if err != nil {
		return nil, err
	}
	o.metrics.FoldDuration.Observe(time.Since(start).Seconds())
	o.cache.Put(ctx, seq, st.Raw())
	return st, nil
}

// archiveBest persists the generation best everywhere configured and opens
// the first archived copy in the viewer when auto-view is on.  Archive and
// viewer failures are logged, never fatal to the run.
func (o *Orchestrator) archiveBest(ctx context.Context, session *domain.Session, genIndex int, best domain.Candidate) {
	var firstPath string
	for _, archiver := range o.archivers {
		path, err := archiver.ArchiveBest(ctx, session.ID, genIndex, best.ID, best.Structure.Raw())
		if err != nil {
			o.log.Warn("failed to archive generation best",
				logging.String("candidate", best.ID),
				logging.Err(err))
			continue
		}
		if firstPath == "" {
			firstPath = path
		}
	}

	if o.autoView && o.viewer != nil && firstPath != "" {
		if err := o.viewer.Open(firstPath); err != nil {
			o.log.Warn("failed to open viewer", logging.Err(err))
		}
	}
}

type nopCache struct{}

func (nopCache) Get(context.Context, protein.Sequence) (string, bool) { return "", false }
func (nopCache) Put(context.Context, protein.Sequence, string)        {}
