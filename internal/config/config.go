// Package config handles project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFile is the project configuration file name.
	ConfigFile = "trendpulse.yml"

	// Default layout under the project root.
	DefaultDataDir         = "output"
	DefaultEnvDir          = "venv"
	DefaultAnalysisProgram = "extensions/custom_analysis.py"
	DefaultPromptFile      = "extensions/prompt.txt"

	// AnalysisDir is the subdirectory of the data dir holding analysis results.
	AnalysisDir = "analysis"

	// AnalysisFile is the persisted analysis result file name.
	AnalysisFile = "custom_analysis.json"

	// Snapshot subdirectories of the data dir, one day-stamped DB each.
	NewsDir = "news"
	RSSDir  = "rss"
)

// Config represents project configuration stored in trendpulse.yml.
type Config struct {
	DataDir         string    `yaml:"data_dir"`         // Collector output directory
	EnvDir          string    `yaml:"env_dir"`          // Isolated runtime environment directory
	AnalysisProgram string    `yaml:"analysis_program"` // External analysis program path
	PromptFile      string    `yaml:"prompt_file"`      // Optional system prompt override
	AI              AIConfig  `yaml:"ai"`
	Channels        []Channel `yaml:"channels"`
}

// AIConfig configures the chat-completion provider used for analysis.
type AIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	KeyEnv         string `yaml:"key_env"`         // Env var holding the API key
	MaxTitles      int    `yaml:"max_titles"`      // Cap on titles included in a prompt
	TimeoutSeconds int    `yaml:"timeout_seconds"` // Per-request HTTP timeout
}

// Channel is a configured notification target. The webhook URL itself lives
// in the environment so the config file stays committable.
type Channel struct {
	Name       string `yaml:"name" json:"name"`
	WebhookEnv string `yaml:"webhook_env" json:"webhook_env"`
}

// ConfigPath returns the path to trendpulse.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFile)
}

// IsProject checks if the given path contains a trendpulse project.
func IsProject(root string) bool {
	info, err := os.Stat(ConfigPath(root))
	return err == nil && info.Mode().IsRegular()
}

// FindProject walks up from the given path to find a trendpulse project.
// Returns the project root path or an error if not found.
func FindProject(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsProject(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a trendpulse project (no %s found)", ConfigFile)
		}
		abs = parent
	}
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the project at the given root and applies
// defaults for any unset keys.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.EnvDir == "" {
		c.EnvDir = DefaultEnvDir
	}
	if c.AnalysisProgram == "" {
		c.AnalysisProgram = DefaultAnalysisProgram
	}
	if c.PromptFile == "" {
		c.PromptFile = DefaultPromptFile
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.openai.com"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o-mini"
	}
	if c.AI.KeyEnv == "" {
		c.AI.KeyEnv = "AI_API_KEY"
	}
	if c.AI.MaxTitles <= 0 {
		c.AI.MaxTitles = 100
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 120
	}
}

// Validate checks configuration values that cannot be defaulted away.
func (c *Config) Validate() error {
	for i, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channel %d must have a name", i+1)
		}
		if ch.WebhookEnv == "" {
			return fmt.Errorf("channel %q must set webhook_env", ch.Name)
		}
	}
	return nil
}

// DataPath returns the data directory resolved against the project root.
func (c *Config) DataPath(root string) string {
	return resolve(root, c.DataDir)
}

// EnvPath returns the environment directory resolved against the project root.
func (c *Config) EnvPath(root string) string {
	return resolve(root, c.EnvDir)
}

// ProgramPath returns the analysis program resolved against the project root.
func (c *Config) ProgramPath(root string) string {
	return resolve(root, c.AnalysisProgram)
}

// PromptPath returns the prompt override file resolved against the project root.
func (c *Config) PromptPath(root string) string {
	return resolve(root, c.PromptFile)
}

// AnalysisPath returns the persisted analysis result path for a data directory.
func AnalysisPath(dataDir string) string {
	return filepath.Join(dataDir, AnalysisDir, AnalysisFile)
}

// NewsDBPath returns the news snapshot DB path for the given day.
func NewsDBPath(dataDir string, day time.Time) string {
	return filepath.Join(dataDir, NewsDir, day.Format("2006-01-02")+".db")
}

// RSSDBPath returns the RSS snapshot DB path for the given day.
func RSSDBPath(dataDir string, day time.Time) string {
	return filepath.Join(dataDir, RSSDir, day.Format("2006-01-02")+".db")
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
