package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pipepilot/pipepilot/internal/analyze"
	"github.com/pipepilot/pipepilot/internal/artifact"
	"github.com/pipepilot/pipepilot/internal/repo"
)

var analyzeOutputDir string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <repo-url>",
	Short: "Clone and analyze a repository without generating files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if analyzeOutputDir != "" {
			cfg.Output.Dir = analyzeOutputDir
		}
		out := cmd.OutOrStdout()

		git := &repo.ExecGit{}
		fetcher := repo.NewFetcher(git, repo.ExecSSH{}, cfg.Output.ReposDir)
		fetcher.SetProgress(out)
		checkout, err := fetcher.Clone(args[0])
		if err != nil {
			return err
		}

		analyzer := analyze.NewAnalyzer(git)
		analyzer.SetProgress(out)
		summary, err := analyzer.Analyze(checkout)
		if err != nil {
			return err
		}

		store := artifact.NewStore(cfg.Output.Dir)
		if err := store.SaveAnalysis(summary); err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%s\n", summary.Text)
		fmt.Fprintf(out, "Primary language: %s\n", summary.PrimaryLanguage)
		if len(summary.TechStack) > 0 {
			fmt.Fprintf(out, "Tech stack: %s\n", strings.Join(summary.TechStack, ", "))
		}
		if len(summary.BuildTools) > 0 {
			fmt.Fprintf(out, "Build tools: %s\n", strings.Join(summary.BuildTools, ", "))
		}
		if len(summary.TestFrameworks) > 0 {
			fmt.Fprintf(out, "Test frameworks: %s\n", strings.Join(summary.TestFrameworks, ", "))
		}
		fmt.Fprintf(out, "Analysis saved to %s\n", store.Dir())
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutputDir, "output", "o", "", "directory for the analysis file")
}
