package main

import (
	"github.com/spf13/cobra"

	"github.com/trendpulse/trendpulse/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Show the resolved configuration.

Prints the configuration in effect after locating the project root and
applying defaults for unset keys.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the JSON output for config.
type ConfigResponse struct {
	Root            string           `json:"root"`
	DataDir         string           `json:"data_dir"`
	EnvDir          string           `json:"env_dir"`
	AnalysisProgram string           `json:"analysis_program"`
	PromptFile      string           `json:"prompt_file"`
	Model           string           `json:"model"`
	BaseURL         string           `json:"base_url"`
	MaxTitles       int              `json:"max_titles"`
	Channels        []config.Channel `json:"channels"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadProject()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		outputHuman("root:             %s\n", root)
		outputHuman("data-dir:         %s\n", cfg.DataPath(root))
		outputHuman("env-dir:          %s\n", cfg.EnvPath(root))
		outputHuman("analysis-program: %s\n", cfg.ProgramPath(root))
		outputHuman("prompt-file:      %s\n", cfg.PromptPath(root))
		outputHuman("model:            %s\n", cfg.AI.Model)
		outputHuman("base-url:         %s\n", cfg.AI.BaseURL)
		outputHuman("max-titles:       %d\n", cfg.AI.MaxTitles)
		for _, ch := range cfg.Channels {
			outputHuman("channel:          %s (%s)\n", ch.Name, ch.WebhookEnv)
		}
		return nil
	}

	return outputJSON(ConfigResponse{
		Root:            root,
		DataDir:         cfg.DataPath(root),
		EnvDir:          cfg.EnvPath(root),
		AnalysisProgram: cfg.ProgramPath(root),
		PromptFile:      cfg.PromptPath(root),
		Model:           cfg.AI.Model,
		BaseURL:         cfg.AI.BaseURL,
		MaxTitles:       cfg.AI.MaxTitles,
		Channels:        cfg.Channels,
	})
}
