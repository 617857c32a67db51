package cli

import (
	"context"

	promclient "github.com/prometheus/client_golang/prometheus"

	appevolution "github.com/messiay/protein-refinary/internal/application/evolution"
	"github.com/messiay/protein-refinary/internal/config"
	domain "github.com/messiay/protein-refinary/internal/domain/evolution"
	"github.com/messiay/protein-refinary/internal/infrastructure/cache"
	"github.com/messiay/protein-refinary/internal/infrastructure/engines/foldx"
	"github.com/messiay/protein-refinary/internal/infrastructure/engines/vina"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/prometheus"
	"github.com/messiay/protein-refinary/internal/infrastructure/remote/esmfold"
	"github.com/messiay/protein-refinary/internal/infrastructure/remote/ligand"
	"github.com/messiay/protein-refinary/internal/infrastructure/remote/mpnn"
	"github.com/messiay/protein-refinary/internal/infrastructure/storage/history"
	"github.com/messiay/protein-refinary/internal/infrastructure/storage/local"
	"github.com/messiay/protein-refinary/internal/infrastructure/storage/objectstore"
	"github.com/messiay/protein-refinary/internal/infrastructure/viewer"
	"github.com/messiay/protein-refinary/pkg/types/protein"
)

// pipeline bundles everything a run needs, assembled once per command.
type pipeline struct {
	orchestrator *appevolution.Orchestrator
	manager      *appevolution.Manager
	preparer     *ligand.Preparer
	viewer       *viewer.Launcher
	history      *history.Store
	registry     *promclient.Registry
	closers      []func() error
}

// buildPipeline wires the scoring adapters around the configuration.
func buildPipeline(ctx context.Context, cfg *config.Config, log logging.Logger) (*pipeline, error) {
	p := &pipeline{registry: promclient.NewRegistry()}
	metrics := prometheus.New(p.registry)

	mutator := domain.NewMutator(cfg.Evolution.MutationRate, cfg.Evolution.Seed)
	designer := mpnn.NewDesigner(cfg.Design, mutator, log)
	folder := esmfold.NewClient(cfg.Fold, log)
	docker := vina.New(cfg.Vina, cfg.Evolution.TempRoot, log)
	stability := foldx.New(cfg.FoldX, cfg.Evolution.TempRoot, log)

	var foldCache domain.FoldCache = cache.NewNopFoldCache()
	if cfg.Redis.Enabled {
		rc := cache.NewRedisFoldCache(cfg.Redis, log)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("fold cache unreachable, continuing without it", logging.Err(err))
			_ = rc.Close()
		} else {
			foldCache = rc
			p.closers = append(p.closers, rc.Close)
		}
	}

	archivers := []domain.BestArchiver{local.NewOutputStore(cfg.Evolution.OutputDir, log)}
	if cfg.MinIO.Enabled {
		arch, err := objectstore.NewArchiver(cfg.MinIO, log)
		if err != nil {
			log.Warn("object store unavailable, continuing without mirroring", logging.Err(err))
		} else if err := arch.EnsureBucket(ctx); err != nil {
			log.Warn("object store bucket unavailable, continuing without mirroring", logging.Err(err))
		} else {
			archivers = append(archivers, arch)
		}
	}

	p.viewer = viewer.NewLauncher(cfg.Viewer, log)
	p.preparer = ligand.NewPreparer(cfg.Ligand, log)

	if cfg.History.Enabled {
		store, err := history.Open(ctx, cfg.History.Path)
		if err != nil {
			log.Warn("run history unavailable", logging.Err(err))
		} else {
			p.history = store
			p.closers = append(p.closers, store.Close)
		}
	}

	p.orchestrator = appevolution.New(
		designer, folder, docker, stability,
		archivers, p.viewer, foldCache,
		appevolution.Options{
			BoxSize:     protein.Vec3{X: cfg.Vina.SizeX, Y: cfg.Vina.SizeY, Z: cfg.Vina.SizeZ},
			Parallelism: cfg.Evolution.Parallelism,
			AutoView:    cfg.Evolution.AutoView,
		},
		metrics, log,
	)
	p.manager = appevolution.NewManager(p.orchestrator, p.history, log)
	return p, nil
}

func (p *pipeline) close() {
	for _, c := range p.closers {
		_ = c()
	}
}
