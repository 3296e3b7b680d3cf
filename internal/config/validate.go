package config

import (
	"fmt"
	"net/url"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a Config for structural and semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	if cfg.OpenRouter.APIKey == "" {
		errs = append(errs, ValidationError{
			Field:   "openrouter.api_key",
			Message: "is required (set OPENROUTER_API_KEY; get a key at https://openrouter.ai)",
		})
	}
	if cfg.OpenRouter.Model == "" {
		errs = append(errs, ValidationError{Field: "openrouter.model", Message: "is required"})
	}
	if cfg.OpenRouter.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{Field: "openrouter.timeout_seconds", Message: "must be positive"})
	}

	if cfg.Jenkins.URL == "" {
		errs = append(errs, ValidationError{Field: "jenkins.url", Message: "is required"})
	} else if u, err := url.Parse(cfg.Jenkins.URL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "jenkins.url",
			Message: fmt.Sprintf("%q is not a valid http(s) URL", cfg.Jenkins.URL),
		})
	}
	if cfg.Jenkins.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{Field: "jenkins.timeout_seconds", Message: "must be positive"})
	}

	if cfg.Output.Dir == "" {
		errs = append(errs, ValidationError{Field: "output.dir", Message: "is required"})
	}
	if cfg.Output.ReposDir == "" {
		errs = append(errs, ValidationError{Field: "output.repos_dir", Message: "is required"})
	}

	return errs
}
