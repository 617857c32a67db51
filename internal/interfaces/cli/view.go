package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/messiay/protein-refinary/internal/infrastructure/viewer"
)

func newViewCmd(rt *runtimeContext) *cobra.Command {
	return &cobra.Command{
		Use:   "view <structure.pdb>",
		Short: "Open a structure file in the molecular viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launcher := viewer.NewLauncher(rt.cfg.Viewer, rt.log)
			if err := launcher.Open(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", args[0])
			return nil
		},
	}
}
