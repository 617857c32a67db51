package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appevolution "github.com/messiay/protein-refinary/internal/application/evolution"
)

type evolveOptions struct {
	proteinPath  string
	ligandPath   string
	ligandSMILES string
	variants     int
	generations  int
}

func newEvolveCmd(rt *runtimeContext) *cobra.Command {
	opts := &evolveOptions{}

	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Run a directed-evolution campaign",
		Long:  "Runs the full refinement loop: propose variants, predict structures, dock\nthem against the ligand, and carry the tightest binder forward.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvolve(cmd, rt, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.proteinPath, "protein", "p", "", "starting structure (PDB file)")
	f.StringVar(&opts.ligandPath, "ligand", "", "prepared ligand (PDBQT file)")
	f.StringVar(&opts.ligandSMILES, "smiles", "", "ligand as SMILES, resolved via public chemistry services")
	f.IntVarP(&opts.variants, "variants", "n", 0, "variants per generation (default from config)")
	f.IntVarP(&opts.generations, "generations", "g", 0, "number of generations (default from config)")
	_ = cmd.MarkFlagRequired("protein")

	return cmd
}

func runEvolve(cmd *cobra.Command, rt *runtimeContext, opts *evolveOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, rt.cfg, rt.log)
	if err != nil {
		return err
	}
	defer p.close()

	initialPDB, err := os.ReadFile(opts.proteinPath)
	if err != nil {
		return fmt.Errorf("failed to read starting structure: %w", err)
	}

	var ligandPDBQT string
	switch {
	case opts.ligandPath != "":
		data, err := os.ReadFile(opts.ligandPath)
		if err != nil {
			return fmt.Errorf("failed to read ligand: %w", err)
		}
		ligandPDBQT = string(data)
	case opts.ligandSMILES != "":
		ligandPDBQT, err = p.preparer.Prepare(ctx, opts.ligandSMILES)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("one of --ligand or --smiles is required")
	}

	variants := opts.variants
	if variants == 0 {
		variants = rt.cfg.Evolution.VariantsPerGeneration
	}
	generations := opts.generations
	if generations == 0 {
		generations = rt.cfg.Evolution.Generations
	}

	id, err := p.manager.StartRun(ctx, appevolution.RunParams{
		InitialPDB:            string(initialPDB),
		LigandPDBQT:           ligandPDBQT,
		VariantsPerGeneration: variants,
		Generations:           generations,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Run %s started (%d variants x %d generations)\n",
		id, variants, generations)

	go func() {
		<-ctx.Done()
		_ = p.manager.CancelRun(id)
	}()
	runErr := p.manager.Wait(id)

	snap, snapErr := p.manager.Snapshot(id)
	if snapErr == nil {
		printRunSummary(cmd, snap)
	}
	return runErr
}

func printRunSummary(cmd *cobra.Command, snap appevolution.RunSnapshot) {
	out := cmd.OutOrStdout()
	for _, rec := range snap.Records {
		fmt.Fprintf(out, "  generation %d: best %s affinity %.2f kcal/mol (%d candidates, %s proposals)\n",
			rec.Index, rec.Best.ID, rec.Best.Affinity, len(rec.Candidates), rec.ProposalOrigin)
	}
	if snap.BestAffinity != nil {
		fmt.Fprintf(out, "Best overall: %s at %.2f kcal/mol\n", snap.BestCandidateID, *snap.BestAffinity)
	}
	if snap.Error != "" {
		fmt.Fprintf(out, "Run ended with status %s: %s\n", snap.Status, snap.Error)
	}
}
