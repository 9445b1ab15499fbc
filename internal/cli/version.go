package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tacogips/dcg/internal/build"
)

// VersionInfo contains version information
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func newVersionCmd() *cobra.Command {
	var short, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for dcg.

Examples:
  dcg version
  dcg version --short
  dcg version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd, short, asJSON)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Show version number only")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func runVersion(cmd *cobra.Command, short, asJSON bool) error {
	info := VersionInfo{
		Version:   build.Version(),
		GoVersion: runtime.Version(),
		Commit:    GitCommit,
		BuildDate: BuildDate,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	out := cmd.OutOrStdout()

	if short {
		fmt.Fprintln(out, info.Version)
		return nil
	}

	if asJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	// Normal output
	fmt.Fprintf(out, "dcg version %s\n", info.Version)
	fmt.Fprintf(out, "Built with: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Commit: %s\n", info.Commit)
	fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", info.OS, info.Arch)

	return nil
}
