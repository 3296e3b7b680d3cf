package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pipepilot/pipepilot/internal/analyze"
	"github.com/pipepilot/pipepilot/internal/artifact"
	"github.com/pipepilot/pipepilot/internal/automation"
	"github.com/pipepilot/pipepilot/internal/config"
	"github.com/pipepilot/pipepilot/internal/db"
	"github.com/pipepilot/pipepilot/internal/generate"
	"github.com/pipepilot/pipepilot/internal/jenkins"
	"github.com/pipepilot/pipepilot/internal/llm"
	"github.com/pipepilot/pipepilot/internal/repo"
	"github.com/pipepilot/pipepilot/internal/session"
)

var (
	generateOutputDir string
	generateReposDir  string
	generateYes       bool
	generateNoJenkins bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <repo-url> [model]",
	Short: "Generate Jenkins pipeline files for a repository",
	Long: `Clones the repository, analyzes its tech stack, and generates a
Jenkinsfile, job configuration, and required-plugins list with the
configured model. Files are refined interactively; on 'ready' the
Jenkinsfile is pushed and the Jenkins job and plugins are provisioned.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(args) > 1 {
			cfg.OpenRouter.Model = args[1]
		}
		if generateOutputDir != "" {
			cfg.Output.Dir = generateOutputDir
		}
		if generateReposDir != "" {
			cfg.Output.ReposDir = generateReposDir
		}
		if errs := config.Validate(cfg); len(errs) > 0 {
			for _, e := range errs {
				cmd.PrintErrf("config: %s\n", e)
			}
			return fmt.Errorf("config has %d validation error(s)", len(errs))
		}

		return runGenerate(cmd, cfg, args[0])
	},
}

func runGenerate(cmd *cobra.Command, cfg *config.Config, repoURL string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	history := openHistory(cfg, cmd.ErrOrStderr())
	var runID int64
	if history != nil {
		defer history.Close()
		id, err := history.StartRun(repoURL, cfg.OpenRouter.Model)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: history disabled: %v\n", err)
			history = nil
		} else {
			runID = id
		}
	}
	logRun := func(event, detail string) {
		if history != nil {
			history.LogEvent(runID, event, detail)
		}
	}

	git := &repo.ExecGit{}

	fmt.Fprintf(out, "Cloning %s\n", repoURL)
	fetcher := repo.NewFetcher(git, repo.ExecSSH{}, cfg.Output.ReposDir)
	fetcher.SetProgress(out)
	checkout, err := fetcher.Clone(repoURL)
	if err != nil {
		logRun("clone_failed", err.Error())
		finishRun(history, runID, "failed", 0)
		return err
	}
	logRun("cloned", checkout.Path)

	fmt.Fprintln(out, "Analyzing repository")
	analyzer := analyze.NewAnalyzer(git)
	analyzer.SetProgress(out)
	summary, err := analyzer.Analyze(checkout)
	if err != nil {
		finishRun(history, runID, "failed", 0)
		return err
	}

	store := artifact.NewStore(cfg.Output.Dir)
	if err := store.SaveAnalysis(summary); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not save analysis: %v\n", err)
	}

	jctx, jc := snapshotJenkins(ctx, cfg, out, store)

	client, err := llm.New(cfg.OpenRouter)
	if err != nil {
		finishRun(history, runID, "failed", 0)
		return err
	}
	fmt.Fprintf(out, "Model: %s\n", client.Model())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	gen := generate.NewGenerator(client)
	sink := &storeSink{store: store, out: out}
	fin := &driverFinalizer{
		driver:   newDriver(jc, git, scanner, out),
		checkout: checkout,
		out:      out,
		log:      logRun,
	}

	loop := session.New(gen, sink, fin, scanner, out, summary, jctx)
	outcome, err := loop.Run(ctx)
	if err != nil {
		finishRun(history, runID, "failed", 0)
		return err
	}

	status := "abandoned"
	if outcome.Finalized {
		status = "finalized"
	}
	finishRun(history, runID, status, outcome.Rounds)

	if outcome.Finalized {
		fmt.Fprintf(out, "\nDone. Files are in %s\n", store.Dir())
	}
	return nil
}

// openHistory connects to the optional run-history database. Failures
// degrade to a warning; generation never depends on the database.
func openHistory(cfg *config.Config, errOut io.Writer) *db.DB {
	if cfg.History.DatabaseURL == "" {
		return nil
	}
	d, err := db.Open(cfg.History.DatabaseURL)
	if err != nil {
		fmt.Fprintf(errOut, "Warning: history disabled: %v\n", err)
		return nil
	}
	if err := d.Migrate(); err != nil {
		fmt.Fprintf(errOut, "Warning: history disabled: %v\n", err)
		d.Close()
		return nil
	}
	return d
}

func finishRun(history *db.DB, runID int64, status string, rounds int) {
	if history != nil {
		history.FinishRun(runID, status, rounds)
	}
}

// snapshotJenkins probes the Jenkins instance. The client is nil only
// when --no-jenkins disables provisioning; an unreachable instance
// still gets a client, so finalization retries it and reports real
// errors instead of skipping.
func snapshotJenkins(ctx context.Context, cfg *config.Config, out io.Writer, store *artifact.Store) (*jenkins.Context, *jenkins.Client) {
	if generateNoJenkins {
		return &jenkins.Context{URL: cfg.Jenkins.URL}, nil
	}

	fmt.Fprintln(out, "Checking Jenkins instance")
	jc := jenkins.New(cfg.Jenkins)
	jctx := jenkins.Snapshot(ctx, jc)
	if jctx.Accessible {
		fmt.Fprintf(out, "  → Jenkins %s, %d plugins\n", jctx.Version, len(jctx.InstalledPlugins))
	} else {
		fmt.Fprintln(out, "  → not reachable, continuing without live plugin data")
	}
	if err := store.SaveJenkinsContext(jctx); err != nil {
		fmt.Fprintf(out, "Warning: could not save Jenkins context: %v\n", err)
	}
	return jctx, jc
}

func newDriver(jc *jenkins.Client, git repo.GitRunner, scanner *bufio.Scanner, out io.Writer) *automation.Driver {
	confirm := automation.Confirmer(automation.AlwaysYes)
	if !generateYes {
		confirm = func(question string) bool {
			fmt.Fprintf(out, "%s [y/N]: ", question)
			if !scanner.Scan() {
				return false
			}
			answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
			return answer == "y" || answer == "yes"
		}
	}

	pusher := repo.NewPusher(git)
	pusher.SetProgress(out)

	// A nil *jenkins.Client must become a nil interface, otherwise the
	// driver would call through it.
	var api automation.JenkinsAPI
	if jc != nil {
		api = jc
	}
	return automation.NewDriver(api, pusher, confirm, out)
}

// storeSink saves each generated set and reports the written files.
type storeSink struct {
	store *artifact.Store
	out   io.Writer
}

func (s *storeSink) Save(set *generate.ArtifactSet) error {
	saved, err := s.store.SaveArtifacts(set)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Files written:")
	for _, f := range saved {
		fmt.Fprintf(s.out, "  %s (%d bytes)\n", f.Name, f.Size)
	}
	return nil
}

// driverFinalizer runs the provisioning steps when the user accepts.
type driverFinalizer struct {
	driver   *automation.Driver
	checkout *repo.Checkout
	out      io.Writer
	log      func(event, detail string)
}

func (f *driverFinalizer) Finalize(ctx context.Context, set *generate.ArtifactSet) error {
	report := f.driver.Run(ctx, f.checkout, set)
	fmt.Fprintln(f.out)
	report.Write(f.out)
	for _, step := range report.Steps {
		if step.Err != nil {
			f.log("step_failed", step.Name+": "+step.Err.Error())
		} else {
			f.log("step_"+step.Status, step.Name)
		}
	}
	return nil
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutputDir, "output", "o", "", "directory for generated files")
	generateCmd.Flags().StringVar(&generateReposDir, "repos-dir", "", "directory for repository clones")
	generateCmd.Flags().BoolVarP(&generateYes, "yes", "y", false, "run provisioning steps without prompting")
	generateCmd.Flags().BoolVar(&generateNoJenkins, "no-jenkins", false, "skip Jenkins probing and provisioning")
}
