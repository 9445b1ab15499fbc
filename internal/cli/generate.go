package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacogips/dcg/internal/app"
)

type generateOptions struct {
	engine   engineFlags
	output   string
	artifact bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <template>",
		Short: "Print the Go source generated from a template",
		Long: `Parse a template and print the Go source of its generated unit.

The source is written to stdout unless --output is given. With --artifact
it is also persisted next to the template.

Examples:
  dcg generate page.dcg
  dcg generate page.dcg -o page.go --package pages
  dcg generate page.dcg --line-markers --no-format`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args[0])
		},
	}

	opts.engine.register(cmd)
	cmd.Flags().StringVarP(&opts.output, FlagOutput, "o", "", DescOutput)
	cmd.Flags().BoolVar(&opts.artifact, FlagArtifact, false, DescArtifact)
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions, path string) error {
	engineOpts, err := opts.engine.options(currentConfig())
	if err != nil {
		return err
	}

	result, err := app.Generate(cmd.Context(), app.GenerateOptions{
		Path:       path,
		Engine:     engineOpts,
		OutputPath: opts.output,
		Artifact:   opts.artifact,
	})
	if err != nil {
		return err
	}

	if result.OutputPath == "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Result.Source)
	} else {
		printSuccess("Generated " + result.OutputPath)
	}
	if result.ArtifactPath != "" {
		printInfo("Artifact: " + result.ArtifactPath)
	}
	return nil
}
