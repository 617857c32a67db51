// Package cli implements the refinary command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// runtimeContext carries the initialised dependencies through the command
// tree.
type runtimeContext struct {
	cfg *config.Config
	log logging.Logger
}

// NewRootCommand creates the root command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	rt := &runtimeContext{}

	cmd := &cobra.Command{
		Use:     "refinary",
		Short:   "Greedy directed-evolution pipeline for protein binders",
		Long:    "refinary runs iterative protein refinement campaigns: it proposes sequence\nvariants, predicts their structures, docks them against a ligand and carries\nthe tightest binder into the next generation.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initRuntime(opts, rt)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./refinary.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newEvolveCmd(rt),
		newLigandCmd(rt),
		newServeCmd(rt),
		newViewCmd(rt),
		newHistoryCmd(rt),
	)
	return cmd
}

// initRuntime loads configuration and builds the logger used by every
// subcommand.
func initRuntime(opts *RootOptions, rt *runtimeContext) error {
	path := opts.ConfigPath
	if path == "" {
		if _, err := os.Stat("refinary.yaml"); err == nil {
			path = "refinary.yaml"
		}
	}

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	log, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}

	rt.cfg = cfg
	rt.log = log
	return nil
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}
