package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacogips/dcg/internal/app"
)

type checkOptions struct {
	engine    engineFlags
	recursive bool
	noCompile bool
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Check templates for errors",
		Long: `Parse, generate and compile templates without rendering them.

Given a directory, every *.dcg file in it is checked. Errors are reported
against template lines.

Examples:
  dcg check page.dcg
  dcg check templates -r
  dcg check templates --no-compile`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0])
		},
	}

	opts.engine.register(cmd)
	cmd.Flags().BoolVarP(&opts.recursive, FlagRecursive, "r", false, DescRecursive)
	cmd.Flags().BoolVar(&opts.noCompile, FlagNoCompile, false, DescNoCompile)
	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions, path string) error {
	cfg := currentConfig()

	engineOpts, err := opts.engine.options(cfg)
	if err != nil {
		return err
	}

	result, err := newRenderer(cfg).CheckTemplate(cmd.Context(), app.CheckTemplateOptions{
		Path:        path,
		Recursive:   opts.recursive,
		Engine:      engineOpts,
		SkipCompile: opts.noCompile,
	})
	if err != nil {
		return err
	}

	for _, e := range result.Errors {
		printErrorMsg(e.String())
	}
	if result.FilesWithErrors > 0 {
		return fmt.Errorf("%d of %d templates have errors", result.FilesWithErrors, result.FilesChecked)
	}
	printSuccess(fmt.Sprintf("%d templates checked", result.FilesChecked))
	return nil
}
