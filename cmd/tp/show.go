package main

import (
	"github.com/spf13/cobra"

	"github.com/trendpulse/trendpulse/internal/analysis"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored analysis result",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadProject()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	analyzer := &analysis.Analyzer{DataDir: cfg.DataPath(root)}

	rec, err := analyzer.LoadRecord()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if rec == nil {
		exitWithError(ExitDataError, "no analysis result found; run tp analyze first")
	}

	if humanOutput {
		outputHuman("Last analysis: %s\n\n%s\n", rec.LastAnalysis, rec.Result.FullAnalysis)
		return nil
	}

	return outputJSON(AnalysisResponse{
		Status:       "stored",
		RunID:        rec.RunID,
		LastAnalysis: rec.LastAnalysis,
		FullAnalysis: rec.Result.FullAnalysis,
		Path:         analyzer.StatePath(),
	})
}
