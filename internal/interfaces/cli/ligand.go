package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLigandCmd(rt *runtimeContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "ligand <smiles>",
		Short: "Resolve a SMILES string into a docking-ready PDBQT block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPipeline(cmd.Context(), rt.cfg, rt.log)
			if err != nil {
				return err
			}
			defer p.close()

			pdbqt, err := p.preparer.Prepare(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(pdbqt), 0o644); err != nil {
					return fmt.Errorf("failed to write ligand file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Ligand written to %s\n", outputPath)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), pdbqt)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the PDBQT to a file instead of stdout")
	return cmd
}
