package main

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/trendpulse/trendpulse/internal/analysis"
	"github.com/trendpulse/trendpulse/internal/config"
	"github.com/trendpulse/trendpulse/internal/news"
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze today's collected headlines",
	Long: `Analyze today's collected headlines.

Reads today's news and RSS snapshots from the data directory, sends the
titles to the configured AI provider, and stores the result. Runs at
most once per calendar day; a second invocation the same day reuses the
stored result.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	root, cfg, err := loadProject()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	analyzer := newAnalyzer(root, cfg)

	rec, ran, err := analyzer.Run(cmd.Context())
	if errors.Is(err, analysis.ErrNoData) {
		exitWithError(ExitDataError, "no collected data for today under %s", cfg.DataPath(root))
	}
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	status := "completed"
	if !ran {
		status = "skipped"
	}

	if humanOutput {
		if ran {
			outputHuman("Analysis completed (%s).\n\n%s\n", rec.LastAnalysis, rec.Result.FullAnalysis)
		} else {
			outputHuman("Already analyzed today (%s); run again tomorrow.\n", rec.LastAnalysis)
		}
		return nil
	}

	return outputJSON(AnalysisResponse{
		Status:       status,
		RunID:        rec.RunID,
		LastAnalysis: rec.LastAnalysis,
		FullAnalysis: rec.Result.FullAnalysis,
		Path:         analyzer.StatePath(),
	})
}

// newAnalyzer builds the daily analyzer from resolved configuration.
func newAnalyzer(root string, cfg *config.Config) *analysis.Analyzer {
	dataDir := cfg.DataPath(root)

	client := analysis.NewClient(
		analysis.WithBaseURL(cfg.AI.BaseURL),
		analysis.WithModel(cfg.AI.Model),
		analysis.WithAPIKey(os.Getenv(cfg.AI.KeyEnv)),
		analysis.WithTimeout(time.Duration(cfg.AI.TimeoutSeconds)*time.Second),
	)

	return &analysis.Analyzer{
		DataDir:    dataDir,
		PromptFile: cfg.PromptPath(root),
		MaxTitles:  cfg.AI.MaxTitles,
		Client:     client,
		Source:     &news.Store{DataDir: dataDir},
	}
}
