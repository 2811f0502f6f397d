package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dPliakos/treematcher"
)

// NewCompileCommand creates the compile command, which prints the compiled
// query tree of a pattern.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <pattern>",
		Short: "Compile a pattern and print its query tree",
		Long: `Compile a pattern and print one line per query node: the quantifier,
the predicate source and any anchors, negation or extreme selector.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := treematcher.Compile(args[0], treematcher.WithLogger(rootOpts.Logger))
			if err != nil {
				return WrapExitError(ExitCommandError, "compiling pattern", err)
			}
			rootOpts.Logger.Debug("compiled pattern", "pattern", p.String(), "nodes", p.NumNodes())
			fmt.Fprint(cmd.OutOrStdout(), p.Dump())
			return nil
		},
	}
}
