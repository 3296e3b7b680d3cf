package repo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PipelineFileName is the fixed path of the pipeline script in the repository.
const PipelineFileName = "Jenkinsfile"

// pipelineBranch is created when the repository has no Jenkinsfile yet.
const pipelineBranch = "feature/jenkins-ci-cd-pipeline"

const commitMessage = "Add Jenkins pipeline configuration"

// PushError reports a failed commit or push of the pipeline script.
type PushError struct {
	Branch string
	Err    error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("push pipeline to branch %s: %v", e.Branch, e.Err)
}

func (e *PushError) Unwrap() error { return e.Err }

// Pusher writes the generated pipeline script into a checkout and pushes it
// over the repository's configured transport.
type Pusher struct {
	git      GitRunner
	progress io.Writer
}

// NewPusher creates a Pusher.
func NewPusher(git GitRunner) *Pusher {
	return &Pusher{git: git}
}

// SetProgress sets a writer for live progress output.
func (p *Pusher) SetProgress(w io.Writer) {
	p.progress = w
}

func (p *Pusher) logf(format string, args ...interface{}) {
	if p.progress != nil {
		fmt.Fprintf(p.progress, "  → "+format+"\n", args...)
	}
}

// PushPipeline writes content to the checkout's Jenkinsfile, commits, and
// pushes. A repository that already tracks a Jenkinsfile is updated on its
// current branch; otherwise a feature branch is created. Returns the branch
// pushed to. No force-push and no retry on conflict.
func (p *Pusher) PushPipeline(c *Checkout, content string) (string, error) {
	dest := filepath.Join(c.Path, PipelineFileName)
	_, statErr := os.Stat(dest)
	hadJenkinsfile := statErr == nil

	target := c.Branch
	if !hadJenkinsfile {
		target = pipelineBranch
	}

	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		return target, &PushError{Branch: target, Err: fmt.Errorf("write %s: %w", PipelineFileName, err)}
	}

	if target != c.Branch {
		p.logf("creating branch %s", target)
		if _, err := p.git.Run(c.Path, "checkout", "-b", target); err != nil {
			return target, &PushError{Branch: target, Err: err}
		}
	}

	if _, err := p.git.Run(c.Path, "add", PipelineFileName); err != nil {
		return target, &PushError{Branch: target, Err: err}
	}

	if out, err := p.git.Run(c.Path, "commit", "-m", commitMessage); err != nil {
		// An unchanged Jenkinsfile is not a failure.
		if !strings.Contains(out, "nothing to commit") {
			return target, &PushError{Branch: target, Err: err}
		}
		p.logf("Jenkinsfile unchanged, nothing to commit")
	}

	pushArgs := []string{"push"}
	if target != c.Branch {
		pushArgs = []string{"push", "--set-upstream", "origin", target}
	}
	if _, err := p.git.Run(c.Path, pushArgs...); err != nil {
		return target, &PushError{Branch: target, Err: err}
	}

	p.logf("pushed %s to origin/%s", PipelineFileName, target)
	return target, nil
}
