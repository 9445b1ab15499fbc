package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tacogips/dcg/internal/app"
	"github.com/tacogips/dcg/internal/config"
	"github.com/tacogips/dcg/internal/debug"
)

// Build metadata, set by main from ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	globalNoColor bool
	globalQuiet   bool
	globalDebug   bool
	globalConfig  string
)

// loadedConfig is the configuration loaded before a command runs.
var loadedConfig *config.Config

// NewRootCmd builds the dcg command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dcg",
		Short: "Template engine that compiles @-directive templates into Go",
		Long: `dcg turns templates written in the "@" directive language into Go
source, compiles them with an embedded interpreter and renders them.

Use "dcg generate <template>" to see the Go source of a template,
"dcg render <template>" to render it and "dcg run" to render every
template listed in a dcg.hcl manifest.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupGlobals,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&globalNoColor, FlagNoColor, false, DescNoColor)
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, FlagQuiet, "q", false, DescQuiet)
	rootCmd.PersistentFlags().BoolVar(&globalDebug, FlagDebug, false, DescDebug)
	rootCmd.PersistentFlags().StringVar(&globalConfig, FlagConfig, "", DescConfig)

	// Add subcommands
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
// Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

// setupGlobals applies the global flags and loads the configuration.
func setupGlobals(cmd *cobra.Command, args []string) error {
	debug.SetDebug(globalDebug)

	cfg, err := loadConfig(globalConfig)
	if err != nil {
		return err
	}
	if !cfg.Output.Color {
		globalNoColor = true
	}
	if cfg.Output.Quiet {
		globalQuiet = true
	}
	debug.SetNoColor(globalNoColor)
	debug.DebugJSON("[cli] Configuration", cfg)

	loadedConfig = cfg
	return nil
}

// loadConfig loads the file given by --config, which must exist, or the
// default configuration file if there is one.
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path == "" {
		defaultPath := config.DefaultConfigPath()
		if defaultPath == "" {
			return config.DefaultConfig(), nil
		}
		return loader.LoadOrDefault(defaultPath)
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}
	return loader.Load(expanded)
}

// currentConfig returns the loaded configuration or the defaults.
func currentConfig() *config.Config {
	if loadedConfig == nil {
		return config.DefaultConfig()
	}
	return loadedConfig
}

// newRenderer creates a renderer following the cache settings.
func newRenderer(cfg *config.Config) *app.Renderer {
	return app.NewRenderer(app.RendererOptions{
		Cache:           cfg.Cache.Enabled,
		CacheMaxEntries: cfg.Cache.MaxEntries,
	})
}

// printError prints an error message to stderr
func printError(err error) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
