// Package cli defines the pipepilot command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pipepilot/pipepilot/internal/config"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "pipepilot",
	Short: "pipepilot — AI-assisted Jenkins pipeline generation",
	Long: `pipepilot clones a repository, analyzes its tech stack, and uses an
OpenRouter-hosted model to generate a Jenkinsfile, a Jenkins job
configuration, and the list of plugins the pipeline needs. Files are
refined interactively, then pushed to the repository and provisioned
on the Jenkins instance.

Configuration comes from pipepilot.yaml (or ~/.pipepilot/config.yaml),
overridden by environment variables; a .env file is loaded if present.`,
}

func Execute() error {
	return rootCmd.Execute()
}

var configFile string

func loadConfig() (*config.Config, error) {
	config.LoadDotenv()
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadDefault()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(jenkinsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
}
