package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads and parses a configuration from the given YAML file path.
// After parsing, defaults and environment overrides are applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a config file in standard locations and loads the
// first one found. Search order: ./pipepilot.yaml, ~/.pipepilot/config.yaml.
// When no file exists, a default configuration built from defaults and
// environment variables is returned, so an .env-only setup works.
func LoadDefault() (*Config, error) {
	candidates := []string{"pipepilot.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".pipepilot", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	var cfg Config
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// LoadDotenv loads a .env file into the process environment if one exists.
// Missing files are not an error.
func LoadDotenv() {
	_ = godotenv.Load()
}

// applyDefaults fills unset fields with working defaults.
func applyDefaults(cfg *Config) {
	if cfg.OpenRouter.BaseURL == "" {
		cfg.OpenRouter.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.OpenRouter.Model == "" {
		cfg.OpenRouter.Model = "anthropic/claude-3-haiku"
	}
	if cfg.OpenRouter.TimeoutSeconds == 0 {
		cfg.OpenRouter.TimeoutSeconds = 120
	}
	if cfg.Jenkins.URL == "" {
		cfg.Jenkins.URL = "http://localhost:8080"
	}
	if cfg.Jenkins.Username == "" {
		cfg.Jenkins.Username = "admin"
	}
	if cfg.Jenkins.TimeoutSeconds == 0 {
		cfg.Jenkins.TimeoutSeconds = 30
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./output"
	}
	if cfg.Output.ReposDir == "" {
		cfg.Output.ReposDir = "./repos"
	}
}

// applyEnv overrides file values with environment variables when set.
func applyEnv(cfg *Config) {
	setenv := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setenv(&cfg.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	setenv(&cfg.OpenRouter.BaseURL, "OPENROUTER_BASE_URL")
	setenv(&cfg.OpenRouter.Model, "AI_MODEL")
	setenv(&cfg.Jenkins.URL, "JENKINS_URL")
	setenv(&cfg.Jenkins.Username, "JENKINS_USERNAME")
	setenv(&cfg.Jenkins.Token, "JENKINS_TOKEN")
	setenv(&cfg.Output.Dir, "PIPEPILOT_OUTPUT_DIR")
	setenv(&cfg.Output.ReposDir, "PIPEPILOT_REPOS_DIR")
	setenv(&cfg.History.DatabaseURL, "PIPEPILOT_DB_URL")
}
