package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/pipepilot/pipepilot/internal/artifact"
	"github.com/pipepilot/pipepilot/internal/config"
)

func testJenkinsConfig(url string) *config.Config {
	cfg := &config.Config{}
	cfg.Jenkins.URL = url
	cfg.Jenkins.TimeoutSeconds = 1
	return cfg
}

// An unreachable Jenkins at startup still yields a client: the
// provisioning steps retry at finalize time and report real errors
// instead of skipping.
func TestSnapshotJenkinsUnreachableKeepsClient(t *testing.T) {
	generateNoJenkins = false
	store := artifact.NewStore(t.TempDir())

	jctx, jc := snapshotJenkins(context.Background(), testJenkinsConfig("http://127.0.0.1:1"), &bytes.Buffer{}, store)
	if jctx.Accessible {
		t.Error("probe should fail against a closed port")
	}
	if jc == nil {
		t.Error("client = nil, want a client for finalization")
	}
	// The failed snapshot is still persisted for later inspection.
	if _, err := store.LoadJenkinsContext(); err != nil {
		t.Errorf("snapshot not saved: %v", err)
	}
}

func TestSnapshotJenkinsDisabledByFlag(t *testing.T) {
	generateNoJenkins = true
	t.Cleanup(func() { generateNoJenkins = false })

	jctx, jc := snapshotJenkins(context.Background(), testJenkinsConfig("http://127.0.0.1:1"), &bytes.Buffer{}, artifact.NewStore(t.TempDir()))
	if jc != nil {
		t.Error("client should be nil with --no-jenkins")
	}
	if jctx.Accessible {
		t.Error("context should not claim accessibility")
	}
}
