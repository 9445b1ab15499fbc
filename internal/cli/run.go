package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tacogips/dcg/internal/app"
	"github.com/tacogips/dcg/internal/manifest"
)

type runOptions struct {
	engine      engineFlags
	only        []string
	concurrency int
	persist     bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [manifest]",
		Short: "Render the templates listed in a manifest",
		Long: `Render every template of a dcg.hcl manifest in parallel.

The manifest defaults to ./dcg.hcl. A failing template stops the run and
none of its outputs are written.

Examples:
  dcg run
  dcg run site/dcg.hcl --only home --only about
  dcg run --concurrency 1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifest.DefaultFileName
			if len(args) == 1 {
				path = args[0]
			}
			return runManifest(cmd, opts, path)
		},
	}

	opts.engine.register(cmd)
	cmd.Flags().StringArrayVar(&opts.only, FlagOnly, nil, DescOnly)
	cmd.Flags().IntVar(&opts.concurrency, FlagConcurrency, 0, DescConcurrency)
	cmd.Flags().BoolVar(&opts.persist, FlagPersist, false, DescPersist)
	return cmd
}

func runManifest(cmd *cobra.Command, opts *runOptions, path string) error {
	cfg := currentConfig()

	engineOpts, err := opts.engine.options(cfg)
	if err != nil {
		return err
	}
	if opts.concurrency < 0 {
		return fmt.Errorf("--%s must not be negative", FlagConcurrency)
	}
	concurrency := opts.concurrency
	if concurrency == 0 {
		concurrency = cfg.Render.Concurrency
	}

	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	result, err := newRenderer(cfg).RunManifest(cmd.Context(), app.RunOptions{
		Manifest:    m,
		Names:       opts.only,
		Concurrency: concurrency,
		Engine:      engineOpts,
		Persist:     opts.persist,
	})
	if err != nil {
		return err
	}

	printHeader("Rendered " + m.Path)
	for _, t := range result.Templates {
		if len(t.Files) == 0 {
			printWarning(t.Name + ": no files written")
			continue
		}
		printSuccess(fmt.Sprintf("%s: %s", t.Name, strings.Join(t.Files, ", ")))
	}
	return nil
}
