package cli

import (
	"github.com/spf13/cobra"

	"github.com/tacogips/dcg/internal/app"
	"github.com/tacogips/dcg/internal/params"
)

type renderOptions struct {
	engine      engineFlags
	params      []string
	outs        []string
	interactive bool
	persist     bool
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template",
		Long: `Compile a template and render it with the given parameters.

The main output goes to stdout unless it is routed with --out _main_=path.
Every other output key the template writes must be routed with --out.
Files are written only after the template rendered successfully.

Examples:
  dcg render page.dcg --param title=Home --param count=3
  dcg render page.dcg --out _main_=page.html --out toc=toc.html
  dcg render page.dcg --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0])
		},
	}

	opts.engine.register(cmd)
	cmd.Flags().StringArrayVarP(&opts.params, FlagParam, "p", nil, DescParam)
	cmd.Flags().StringArrayVar(&opts.outs, FlagOut, nil, DescOut)
	cmd.Flags().BoolVarP(&opts.interactive, FlagInteractive, "i", false, DescInteractive)
	cmd.Flags().BoolVar(&opts.persist, FlagPersist, false, DescPersist)
	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions, path string) error {
	ctx := cmd.Context()
	cfg := currentConfig()

	engineOpts, err := opts.engine.options(cfg)
	if err != nil {
		return err
	}
	values, err := params.ParseAssignments(opts.params)
	if err != nil {
		return err
	}
	outputs, err := parseOutputs(opts.outs)
	if err != nil {
		return err
	}

	r := newRenderer(cfg)
	compiled, err := r.Compile(ctx, app.CompileOptions{
		Path:    path,
		Engine:  engineOpts,
		Persist: opts.persist,
	})
	if err != nil {
		return err
	}

	if missing := params.Missing(compiled.Result.Parameters, values); len(missing) > 0 && opts.interactive {
		answers, err := PromptForParameters(missing)
		if err != nil {
			return err
		}
		for name, value := range answers {
			values[name] = value
		}
	}

	args, err := params.FromStrings(compiled.Result.Parameters, values)
	if err != nil {
		return app.NewParameterError("invalid parameters for "+path, err)
	}

	files, err := r.InvokeToFiles(ctx, compiled, outputs, cmd.OutOrStdout(), args...)
	if err != nil {
		return err
	}
	for _, f := range files {
		printSuccess("Wrote " + f)
	}
	return nil
}
