package cli

import (
	"github.com/spf13/cobra"

	"github.com/tacogips/dcg/internal/config"
	"github.com/tacogips/dcg/internal/server"
)

type serveOptions struct {
	addr      string
	logLevel  string
	logFormat string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the template API over HTTP",
		Long: `Start an HTTP server exposing template generation and checking.

Endpoints:
  GET  /health
  POST /api/generate
  POST /api/check

Templates are never executed by the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, FlagAddr, "", DescAddr)
	cmd.Flags().StringVar(&opts.logLevel, FlagLogLevel, "", DescLogLevel)
	cmd.Flags().StringVar(&opts.logFormat, FlagLogFormat, "", DescLogFormat)
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg := *currentConfig()
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.logLevel != "" {
		cfg.Server.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Server.LogFormat = opts.logFormat
	}
	if err := config.Validate(&cfg); err != nil {
		return err
	}

	printInfo("Listening on " + cfg.Server.Addr)
	return server.New(server.Options{Config: &cfg}).ListenAndServe(cmd.Context())
}
