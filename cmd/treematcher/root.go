package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dPliakos/treematcher/internal/config"
)

// RootOptions holds global flags and the state built from them before any
// subcommand runs.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the treematcher CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "treematcher",
		Short: "Search trees for topology and attribute patterns",
		Long: `treematcher compiles a pattern written as a Newick tree and searches
target trees for the nodes where it matches.

Pattern labels are predicates over target nodes. Trailing metacharacters
set quantifiers (+ * ? {n} {lo-hi}), anchors (^ $) and negation (!).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))

	return cmd
}

func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(o.ConfigPath); err != nil {
			return WrapExitError(ExitCommandError, "loading config", err)
		}
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log, o.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring logger", err)
	}
	o.Config, o.Logger = cfg, logger
	return nil
}
