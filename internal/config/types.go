package config

// Config is the top-level configuration passed explicitly into each component.
type Config struct {
	OpenRouter OpenRouter `yaml:"openrouter"`
	Jenkins    Jenkins    `yaml:"jenkins"`
	Output     Output     `yaml:"output"`
	History    History    `yaml:"history"`
}

// OpenRouter configures the hosted completion API.
type OpenRouter struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Jenkins configures the Jenkins management API connection.
type Jenkins struct {
	URL            string `yaml:"url"`
	Username       string `yaml:"username"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Output configures local directories for generated files and clones.
type Output struct {
	Dir      string `yaml:"dir"`
	ReposDir string `yaml:"repos_dir"`
}

// History configures the optional Postgres run-history store.
// An empty DatabaseURL disables history recording.
type History struct {
	DatabaseURL string `yaml:"database_url"`
}
