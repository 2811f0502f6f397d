package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dPliakos/treematcher"
	"github.com/dPliakos/treematcher/tree"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	All     bool
	MaxHits int
	Order   string
	NoCache bool
	Format  string // "text" | "json"
}

// FileResult is the outcome of searching one target file.
type FileResult struct {
	File    string  `json:"file"`
	Matches []Match `json:"matches"`
}

type Match struct {
	Name   string `json:"name"`
	Newick string `json:"newick"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <pattern> <tree-file>...",
		Short: "Search tree files for a pattern",
		Long: `Search each Newick tree file for nodes matching the pattern. A file
named "-" is read from standard input.

The exit status is 0 when any file matched, 1 when none did and 2 on error.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, args[0], args[1:])
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "report every match")
	cmd.Flags().IntVarP(&opts.MaxHits, "max-hits", "n", 1, "matches per file, negative for no limit")
	cmd.Flags().StringVar(&opts.Order, "order", "preorder", "traversal order (preorder|postorder|levelorder)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "do not precompute leaf sets")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	return cmd
}

// resolve merges flags given on the command line over the config file.
func (o *SearchOptions) resolve(cmd *cobra.Command) (maxHits int, order tree.Order, cache bool, err error) {
	cfg := o.Config.Search
	maxHits, cache = cfg.MaxHits, cfg.Cache
	orderName := cfg.Order

	flags := cmd.Flags()
	if flags.Changed("max-hits") {
		maxHits = o.MaxHits
	}
	if o.All {
		maxHits = treematcher.Unlimited
	}
	if flags.Changed("order") {
		orderName = o.Order
	}
	if o.NoCache {
		cache = false
	}
	if o.Format != "text" && o.Format != "json" {
		return 0, 0, false, fmt.Errorf("invalid format %q: must be text or json", o.Format)
	}
	order, err = tree.ParseOrder(orderName)
	return maxHits, order, cache, err
}

func runSearch(cmd *cobra.Command, opts *SearchOptions, pattern string, files []string) error {
	maxHits, order, useCache, err := opts.resolve(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	if err := checkFiles(files); err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}
	logger := opts.Logger

	p, err := treematcher.Compile(pattern, treematcher.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "compiling pattern", err)
	}
	logger.Debug("compiled pattern", "pattern", p.String(), "nodes", p.NumNodes(), "extreme", p.IsExtreme())

	results := make([]FileResult, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.Config.Search.Workers)

	for i, file := range files {
		g.Go(func() error {
			target, err := readTree(cmd.InOrStdin(), file)
			if err != nil {
				return WrapExitError(ExitCommandError, file, err)
			}
			searchOpts := []treematcher.SearchOption{treematcher.WithMaxHits(maxHits), treematcher.WithOrder(order)}
			if useCache {
				searchOpts = append(searchOpts, treematcher.WithCache(treematcher.NewCache(target)))
			}

			matches, err := collect(ctx, p, target, searchOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, file, err)
			}
			logger.Debug("searched file", "file", file, "matches", len(matches))
			results[i] = FileResult{File: file, Matches: matches}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := writeResults(cmd.OutOrStdout(), opts.Format, results); err != nil {
		return err
	}
	for _, r := range results {
		if len(r.Matches) > 0 {
			return nil
		}
	}
	return NewExitError(ExitNoMatch, "no match")
}

// collect drains one search, stopping early when ctx is cancelled by a
// failure in another file.
func collect(ctx context.Context, p *treematcher.Pattern, target tree.Node, opts []treematcher.SearchOption) ([]Match, error) {
	matches := []Match{}
	for n, err := range p.Search(target, opts...) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches = append(matches, Match{Name: n.Name(), Newick: tree.Format(n)})
	}
	return matches, nil
}

// checkFiles rejects a second "-": files are read concurrently and stdin can
// only be consumed once.
func checkFiles(files []string) error {
	stdin := 0
	for _, f := range files {
		if f == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return fmt.Errorf("standard input (-) given %d times", stdin)
	}
	return nil
}

func readTree(stdin io.Reader, file string) (*tree.Tree, error) {
	if file == "-" {
		return tree.Read(stdin)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tree.Read(f)
}

func writeResults(w io.Writer, format string, results []FileResult) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}
	multi := len(results) > 1
	for _, r := range results {
		for _, m := range r.Matches {
			if multi {
				fmt.Fprintf(w, "%s:", r.File)
			}
			fmt.Fprintln(w, m.Newick)
		}
	}
	return nil
}
