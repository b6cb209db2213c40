package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/trendpulse/trendpulse/internal/analysis"
	"github.com/trendpulse/trendpulse/internal/config"
	"github.com/trendpulse/trendpulse/internal/launcher"
	"github.com/trendpulse/trendpulse/internal/notify"
)

var runNative bool

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runNative, "native", false, "Run the built-in analysis pipeline instead of the external program")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch the daily analysis",
	Long: `Launch the daily analysis.

Checks that the isolated runtime environment exists, runs the analysis
program exactly once with that environment activated, and reports the
outcome. With --native the built-in pipeline (collect, analyze, push)
runs in-process instead of the external program.

Exit status is 0 on success and 1 on any failure; the analysis
program's own exit code is never passed through.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	root, cfg, err := loadProject()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	dataDir := cfg.DataPath(root)

	var runner launcher.Runner
	if runNative {
		runner = launcher.RunnerFunc(func(ctx context.Context) error {
			return runNativePipeline(ctx, root, cfg)
		})
	} else {
		runner = &launcher.ExecRunner{
			Program: cfg.ProgramPath(root),
			EnvDir:  cfg.EnvPath(root),
			Dir:     root,
		}
	}

	l := &launcher.Launcher{
		EnvDir:     cfg.EnvPath(root),
		Runner:     runner,
		Out:        os.Stdout,
		ResultPath: config.AnalysisPath(dataDir),
	}

	os.Exit(launcher.ExitCode(l.Run(cmd.Context())))
	return nil
}

// runNativePipeline is the in-process equivalent of the external analysis
// program: analyze today's titles if not yet done, then push the result to
// any configured channels.
func runNativePipeline(ctx context.Context, root string, cfg *config.Config) error {
	analyzer := newAnalyzer(root, cfg)

	rec, ran, err := analyzer.Run(ctx)
	if errors.Is(err, analysis.ErrNoData) {
		// Nothing collected today is not a launch failure
		fmt.Println("No collected data for today; nothing to analyze.")
		return nil
	}
	if err != nil {
		return err
	}
	if !ran {
		fmt.Println("Already analyzed today; reusing the stored result.")
	}

	channels := resolveChannels(cfg)
	if len(channels) == 0 {
		return nil
	}

	payload := notify.BuildStandalone(rec.Result.FullAnalysis, time.Now())
	_, err = notify.NewDispatcher(channels).DispatchAll(ctx, payload)
	return err
}

// resolveChannels resolves configured channels against the environment,
// silently skipping channels whose webhook variable is unset.
func resolveChannels(cfg *config.Config) []notify.Channel {
	var channels []notify.Channel
	for _, ch := range cfg.Channels {
		if resolved, ok := notify.WebhookFromEnv(ch.Name, ch.WebhookEnv); ok {
			channels = append(channels, resolved)
		}
	}
	return channels
}
