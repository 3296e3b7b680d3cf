package repo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// RetrievalError reports a repository that could not be cloned.
type RetrievalError struct {
	URL string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("fetch repository %s: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Checkout describes a cloned working copy.
type Checkout struct {
	URL    string `json:"url"`
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	Branch string `json:"branch"`
	SSH    bool   `json:"ssh"`
}

// Fetcher clones repositories into a local scratch directory.
type Fetcher struct {
	git      GitRunner
	ssh      SSHProber
	reposDir string
	progress io.Writer // nil = silent
}

// NewFetcher creates a Fetcher rooted at reposDir.
func NewFetcher(git GitRunner, ssh SSHProber, reposDir string) *Fetcher {
	return &Fetcher{git: git, ssh: ssh, reposDir: reposDir}
}

// SetProgress sets a writer for live progress output (e.g. os.Stderr).
func (f *Fetcher) SetProgress(w io.Writer) {
	f.progress = w
}

func (f *Fetcher) logf(format string, args ...interface{}) {
	if f.progress != nil {
		fmt.Fprintf(f.progress, "  → "+format+"\n", args...)
	}
}

// ParseRepoURL extracts the owner and repository name from an HTTPS or SSH
// GitHub URL. Other hosts work as long as the path ends in owner/name.
func ParseRepoURL(repoURL string) (owner, name string, err error) {
	s := strings.TrimSuffix(strings.TrimSpace(repoURL), "/")
	s = strings.TrimSuffix(s, ".git")

	switch {
	case strings.HasPrefix(s, "git@"):
		// git@host:owner/name
		_, after, ok := strings.Cut(s, ":")
		if !ok {
			return "", "", fmt.Errorf("invalid SSH repository URL %q", repoURL)
		}
		s = after
	case strings.Contains(s, "://"):
		_, after, _ := strings.Cut(s, "://")
		// drop the host segment
		if i := strings.Index(after, "/"); i >= 0 {
			s = after[i+1:]
		} else {
			return "", "", fmt.Errorf("repository URL %q has no path", repoURL)
		}
	}

	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[len(parts)-1] == "" || parts[len(parts)-2] == "" {
		return "", "", fmt.Errorf("cannot determine owner/name from repository URL %q", repoURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// Clone clones the repository into reposDir/<owner>_<name>, replacing any
// stale checkout. GitHub HTTPS URLs are rewritten to SSH when key auth is
// usable; a failed SSH clone falls back to HTTPS once. No other retries.
func (f *Fetcher) Clone(repoURL string) (*Checkout, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, &RetrievalError{URL: repoURL, Err: err}
	}

	path := filepath.Join(f.reposDir, fmt.Sprintf("%s_%s", owner, name))
	if err := os.MkdirAll(f.reposDir, 0o755); err != nil {
		return nil, &RetrievalError{URL: repoURL, Err: fmt.Errorf("mkdir %s: %w", f.reposDir, err)}
	}

	cloneURL := repoURL
	// User-supplied SSH URLs clone over SSH as given.
	useSSH := strings.HasPrefix(repoURL, "git@") || strings.HasPrefix(repoURL, "ssh://")
	rewrote := false
	if strings.HasPrefix(repoURL, "https://github.com/") && f.ssh != nil && f.ssh.Available() {
		cloneURL = sshRemote(owner, name)
		useSSH = true
		rewrote = true
		f.logf("SSH auth available, cloning via %s", cloneURL)
	}

	if err := f.cloneInto(cloneURL, path); err != nil {
		if !rewrote {
			return nil, &RetrievalError{URL: repoURL, Err: err}
		}
		// The SSH rewrite failed; try the original HTTPS form once.
		f.logf("SSH clone failed, falling back to HTTPS")
		useSSH = false
		cloneURL = httpsRemote(owner, name)
		if err := f.cloneInto(cloneURL, path); err != nil {
			return nil, &RetrievalError{URL: repoURL, Err: err}
		}
	}

	branch, err := f.git.Run(path, "branch", "--show-current")
	if err != nil || branch == "" {
		branch = "main"
	}

	f.logf("cloned %s/%s on branch %s", owner, name, branch)
	return &Checkout{
		URL:    repoURL,
		Owner:  owner,
		Name:   name,
		Path:   path,
		Branch: branch,
		SSH:    useSSH,
	}, nil
}

func (f *Fetcher) cloneInto(cloneURL, path string) error {
	if _, err := os.Stat(path); err == nil {
		f.logf("removing stale checkout %s", path)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove stale checkout: %w", err)
		}
	}
	if _, err := f.git.Run("", "clone", cloneURL, path); err != nil {
		return err
	}
	return nil
}
