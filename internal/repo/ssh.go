package repo

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SSHProber reports whether key-based SSH auth to GitHub is usable.
type SSHProber interface {
	Available() bool
}

// ExecSSH probes the local SSH setup with the ssh-add and ssh binaries.
type ExecSSH struct{}

// candidate private key filenames checked under ~/.ssh when the agent is empty
var sshKeyFiles = []string{"id_rsa", "id_ed25519", "id_ecdsa", "github_rsa"}

// Available checks for loaded agent identities or key files, then probes
// github.com. The GitHub probe exits non-zero even on success, so the
// stderr banner is what decides.
func (ExecSSH) Available() bool {
	if !hasSSHKeys() {
		return false
	}

	cmd := exec.Command("ssh", "-T",
		"-o", "ConnectTimeout=10",
		"-o", "StrictHostKeyChecking=no",
		"git@github.com")
	out, _ := cmd.CombinedOutput()
	return strings.Contains(string(out), "successfully authenticated")
}

func hasSSHKeys() bool {
	out, err := exec.Command("ssh-add", "-l").CombinedOutput()
	if err == nil && !strings.Contains(strings.ToLower(string(out)), "no identities") {
		return true
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	for _, name := range sshKeyFiles {
		if _, err := os.Stat(filepath.Join(home, ".ssh", name)); err == nil {
			return true
		}
	}
	return false
}

// sshRemote builds the SSH remote URL for a GitHub owner/name pair.
func sshRemote(owner, name string) string {
	return fmt.Sprintf("git@github.com:%s/%s.git", owner, name)
}

// httpsRemote builds the HTTPS remote URL for a GitHub owner/name pair.
func httpsRemote(owner, name string) string {
	return fmt.Sprintf("https://github.com/%s/%s", owner, name)
}
