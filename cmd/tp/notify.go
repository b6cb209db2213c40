package main

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/trendpulse/trendpulse/internal/analysis"
	"github.com/trendpulse/trendpulse/internal/notify"
)

func init() {
	rootCmd.AddCommand(notifyCmd)
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Push the analysis result to configured channels",
	Long: `Push the analysis result to configured channels.

Runs today's analysis first if it hasn't run yet, then posts the result
to every channel whose webhook variable is set. When today has no
collected data, a previously stored result is pushed instead.`,
	Args: cobra.NoArgs,
	RunE: runNotify,
}

// NotifyResponse is the JSON output for notify.
type NotifyResponse struct {
	Status  string          `json:"status"`
	Results []notify.Result `json:"results"`
}

func runNotify(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	root, cfg, err := loadProject()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	analyzer := newAnalyzer(root, cfg)

	rec, _, err := analyzer.Run(cmd.Context())
	if errors.Is(err, analysis.ErrNoData) {
		// Fall back to whatever was stored earlier
		rec, err = analyzer.LoadRecord()
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if rec == nil {
			exitWithError(ExitDataError, "no analysis result to push; run tp analyze first")
		}
	} else if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	channels := resolveChannels(cfg)
	if len(channels) == 0 {
		exitWithError(ExitConfigError, "no webhook URLs resolved; set the webhook_env variables for your channels")
	}

	payload := notify.BuildStandalone(rec.Result.FullAnalysis, time.Now())
	results, dispatchErr := notify.NewDispatcher(channels).DispatchAll(cmd.Context(), payload)

	status := "sent"
	if dispatchErr != nil {
		status = "failed"
	}

	if humanOutput {
		for _, r := range results {
			if r.OK {
				outputHuman("%s: ok\n", r.Channel)
			} else {
				outputHuman("%s: %s\n", r.Channel, r.Error)
			}
		}
	} else {
		outputJSON(NotifyResponse{Status: status, Results: results})
	}

	if dispatchErr != nil {
		os.Exit(ExitError)
	}
	return nil
}
