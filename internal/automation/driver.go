// Package automation provisions the accepted pipeline: pushes the
// Jenkinsfile to the repository, creates or updates the Jenkins job,
// and installs missing plugins.
package automation

import (
	"context"
	"fmt"
	"io"

	"github.com/pipepilot/pipepilot/internal/generate"
	"github.com/pipepilot/pipepilot/internal/plugins"
	"github.com/pipepilot/pipepilot/internal/repo"
)

// JenkinsAPI is the subset of the Jenkins client the driver needs.
type JenkinsAPI interface {
	CreateOrUpdateJob(ctx context.Context, name, configXML string) (bool, error)
	InstalledPlugins(ctx context.Context) (map[string]string, error)
	InstallPlugin(ctx context.Context, name string) error
	JobURL(name string) string
}

// GitPusher pushes the generated Jenkinsfile to the repository.
// Implemented by *repo.Pusher.
type GitPusher interface {
	PushPipeline(c *repo.Checkout, content string) (string, error)
}

// Confirmer asks the user whether to run one step. AlwaysYes skips the
// prompt.
type Confirmer func(question string) bool

// AlwaysYes confirms every step.
func AlwaysYes(string) bool { return true }

// Step status values.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// StepResult records the outcome of one provisioning step.
type StepResult struct {
	Name   string
	Status string
	Detail string
	Err    error
}

// Report collects the results of a provisioning run. Steps always
// appear in execution order; a failed step does not stop later steps.
type Report struct {
	Steps []StepResult
}

// Success reports whether every non-skipped step succeeded.
func (r *Report) Success() bool {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Write prints the report.
func (r *Report) Write(w io.Writer) {
	fmt.Fprintln(w, "Automation summary:")
	for _, s := range r.Steps {
		switch s.Status {
		case StatusOK:
			fmt.Fprintf(w, "  [ok]      %s: %s\n", s.Name, s.Detail)
		case StatusSkipped:
			fmt.Fprintf(w, "  [skipped] %s: %s\n", s.Name, s.Detail)
		default:
			fmt.Fprintf(w, "  [failed]  %s: %v\n", s.Name, s.Err)
		}
	}
}

// Driver runs the provisioning steps. Steps are independent: each is
// confirmed, attempted, and recorded regardless of earlier failures.
type Driver struct {
	jenkins  JenkinsAPI
	pusher   GitPusher
	confirm  Confirmer
	progress io.Writer
}

// NewDriver creates a Driver. jenkins may be nil when Jenkins
// provisioning is disabled; the job and plugin steps are then skipped.
func NewDriver(jenkins JenkinsAPI, pusher GitPusher, confirm Confirmer, progress io.Writer) *Driver {
	if confirm == nil {
		confirm = AlwaysYes
	}
	return &Driver{jenkins: jenkins, pusher: pusher, confirm: confirm, progress: progress}
}

func (d *Driver) logf(format string, args ...interface{}) {
	if d.progress != nil {
		fmt.Fprintf(d.progress, format+"\n", args...)
	}
}

// Run executes the push, job, and plugin steps for an accepted set.
func (d *Driver) Run(ctx context.Context, checkout *repo.Checkout, set *generate.ArtifactSet) *Report {
	report := &Report{}
	report.Steps = append(report.Steps, d.pushStep(checkout, set))
	report.Steps = append(report.Steps, d.jobStep(ctx, checkout, set))
	report.Steps = append(report.Steps, d.pluginStep(ctx, set)...)
	return report
}

func (d *Driver) pushStep(checkout *repo.Checkout, set *generate.ArtifactSet) StepResult {
	step := StepResult{Name: "push"}
	if !d.confirm("Push Jenkinsfile to the repository?") {
		step.Status = StatusSkipped
		step.Detail = "declined"
		return step
	}

	d.logf("  → pushing Jenkinsfile")
	branch, err := d.pusher.PushPipeline(checkout, set.Jenkinsfile)
	if err != nil {
		step.Status = StatusFailed
		step.Err = err
		return step
	}
	step.Status = StatusOK
	step.Detail = "branch " + branch
	return step
}

func (d *Driver) jobStep(ctx context.Context, checkout *repo.Checkout, set *generate.ArtifactSet) StepResult {
	step := StepResult{Name: "job"}
	if d.jenkins == nil {
		step.Status = StatusSkipped
		step.Detail = "jenkins disabled"
		return step
	}
	jobName := checkout.Name + "-pipeline"
	if !d.confirm(fmt.Sprintf("Create or update Jenkins job %q?", jobName)) {
		step.Status = StatusSkipped
		step.Detail = "declined"
		return step
	}

	d.logf("  → configuring job %s", jobName)
	updated, err := d.jenkins.CreateOrUpdateJob(ctx, jobName, set.JobConfig)
	if err != nil {
		// Jenkins rejects some model-generated config.xml documents.
		// Retry once with a minimal pipeline job that reads the
		// Jenkinsfile from SCM.
		d.logf("  → job config rejected, retrying with minimal config")
		if _, retryErr := d.jenkins.CreateOrUpdateJob(ctx, jobName, minimalJobConfig(checkout)); retryErr == nil {
			step.Status = StatusOK
			step.Detail = "created with minimal config at " + d.jenkins.JobURL(jobName)
			return step
		}
		step.Status = StatusFailed
		step.Err = err
		return step
	}
	step.Status = StatusOK
	if updated {
		step.Detail = "updated " + d.jenkins.JobURL(jobName)
	} else {
		step.Detail = "created " + d.jenkins.JobURL(jobName)
	}
	return step
}

// pluginStep reconciles required plugins against the installed set and
// installs the missing ones, one result per plugin. An unreadable
// installed list fails the step without attempting any install.
func (d *Driver) pluginStep(ctx context.Context, set *generate.ArtifactSet) []StepResult {
	step := StepResult{Name: "plugins"}
	if d.jenkins == nil {
		step.Status = StatusSkipped
		step.Detail = "jenkins disabled"
		return []StepResult{step}
	}

	required, err := plugins.Parse(set.RequiredPlugins)
	if err != nil {
		step.Status = StatusSkipped
		step.Detail = fmt.Sprintf("required plugins not parsed: %v", err)
		return []StepResult{step}
	}

	installed, err := d.jenkins.InstalledPlugins(ctx)
	if err != nil {
		step.Status = StatusFailed
		step.Err = err
		return []StepResult{step}
	}

	diff := plugins.Compute(required, installed)
	if len(diff.Missing) == 0 {
		step.Status = StatusOK
		step.Detail = "all required plugins installed"
		return []StepResult{step}
	}

	if !d.confirm(fmt.Sprintf("Install %d missing plugins?", len(diff.Missing))) {
		step.Status = StatusSkipped
		step.Detail = "declined"
		return []StepResult{step}
	}

	var results []StepResult
	for _, p := range diff.Missing {
		r := StepResult{Name: "plugin " + p.Name}
		d.logf("  → installing plugin %s", p.Name)
		if err := d.jenkins.InstallPlugin(ctx, p.Name); err != nil {
			r.Status = StatusFailed
			r.Err = err
		} else {
			r.Status = StatusOK
			r.Detail = "install requested"
		}
		results = append(results, r)
	}
	return results
}
