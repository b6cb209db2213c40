// Package main provides the tp CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trendpulse/trendpulse/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tp",
	Short: "Daily hot-news AI analysis",
	Long: `tp analyzes the day's collected trending headlines.

An upstream collector writes per-day SQLite snapshots under the data
directory (news/ and rss/). tp reads today's snapshots, runs an AI
analysis at most once per day, stores the result as JSON, and pushes
it to configured webhook channels.

Commands output JSON by default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// loadProject locates the project root and loads its configuration.
// Without a trendpulse.yml anywhere above the working directory the
// defaults apply, rooted at the working directory itself.
func loadProject() (string, *config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("getting current directory: %w", err)
	}

	// Check TP_ROOT environment variable first
	if root := os.Getenv("TP_ROOT"); root != "" {
		cwd = root
	}

	root, err := config.FindProject(cwd)
	if err != nil {
		return cwd, config.Default(), nil
	}

	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}

	return root, cfg, nil
}
