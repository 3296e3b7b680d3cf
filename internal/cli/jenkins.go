package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pipepilot/pipepilot/internal/artifact"
	"github.com/pipepilot/pipepilot/internal/jenkins"
	"github.com/pipepilot/pipepilot/internal/plugins"
)

var jenkinsCmd = &cobra.Command{
	Use:   "jenkins",
	Short: "Inspect the configured Jenkins instance",
}

var jenkinsContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Probe Jenkins and print its version and plugin categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		jctx := jenkins.Snapshot(cmd.Context(), jenkins.New(cfg.Jenkins))
		jctx.Write(cmd.OutOrStdout())
		if !jctx.Accessible {
			return fmt.Errorf("jenkins at %s is not accessible", jctx.URL)
		}
		return nil
	},
}

var jenkinsPluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List installed plugins and diff them against the generated requirements",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := artifact.NewStore(cfg.Output.Dir)

		installed, err := jenkins.New(cfg.Jenkins).InstalledPlugins(cmd.Context())
		if err != nil {
			// Fall back to the snapshot saved during the last run.
			jctx, loadErr := store.LoadJenkinsContext()
			if loadErr != nil || !jctx.Accessible {
				return err
			}
			cmd.PrintErrf("Jenkins unreachable (%v); using saved snapshot\n", err)
			installed = jctx.InstalledPlugins
		}

		names := make([]string, 0, len(installed))
		for name := range installed {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cmd.Printf("%s %s\n", name, installed[name])
		}
		cmd.Printf("%d plugins installed\n", len(names))

		return printRequiredDiff(cmd, store, installed)
	},
}

// printRequiredDiff compares the last generated required_plugins.xml
// against the installed set. No generated files is not an error.
func printRequiredDiff(cmd *cobra.Command, store *artifact.Store, installed map[string]string) error {
	set, err := store.LoadArtifacts()
	if err != nil {
		return nil
	}

	required, err := plugins.Parse(set.RequiredPlugins)
	if err != nil {
		cmd.Printf("\n%s: %v\n", artifact.FileRequiredPlugins, err)
		return nil
	}

	if summary, err := store.LoadAnalysis(); err == nil {
		cmd.Printf("\nRequired by the pipeline generated for %s:\n", summary.RepoURL)
	} else {
		cmd.Println("\nRequired by the last generated pipeline:")
	}
	diff := plugins.Compute(required, installed)
	if len(diff.Missing) == 0 {
		cmd.Println("  all required plugins are installed")
		return nil
	}
	for _, p := range diff.Missing {
		cmd.Printf("  missing: %s\n", p)
	}
	return nil
}

func init() {
	jenkinsCmd.AddCommand(jenkinsContextCmd)
	jenkinsCmd.AddCommand(jenkinsPluginsCmd)
}
