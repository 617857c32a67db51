package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/messiay/protein-refinary/internal/infrastructure/storage/history"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

func newHistoryCmd(rt *runtimeContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past evolution runs, or show one run in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rt.cfg.History.Enabled {
				return apperrors.New(apperrors.ErrCodeUnavailable,
					"run history is disabled; set history.enabled in the configuration")
			}
			store, err := history.Open(cmd.Context(), rt.cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return showRun(cmd, store, args[0])
			}
			return listRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func listRuns(cmd *cobra.Command, store *history.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tGENERATIONS\tBEST\tAFFINITY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%.2f\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			len(run.Records), run.Generations,
			run.BestCandidateID,
			run.BestAffinity)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, store *history.Store, id string) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintf(out, "  started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "  finished: %s\n", run.FinishedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "  settings: %d variants x %d generations\n",
		run.VariantsPerGeneration, run.Generations)
	if run.BestCandidateID != "" {
		fmt.Fprintf(out, "  best:     %s at %.2f kcal/mol\n", run.BestCandidateID, run.BestAffinity)
	}
	for _, rec := range run.Records {
		fmt.Fprintf(out, "  generation %d: %s at %.2f (%d candidates, %s proposals)\n",
			rec.Index, rec.BestID, rec.BestAffinity, rec.CandidateCount, rec.Origin)
	}
	return nil
}
