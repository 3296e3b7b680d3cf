package jenkins

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSnapshotAccessible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/json":
			w.Header().Set("X-Jenkins", "2.426.1")
			w.Write([]byte(`{}`))
		case "/pluginManager/api/json":
			w.Write([]byte(`{"plugins":[{"shortName":"git","version":"5.2.0"},{"shortName":"slack","version":"1.0"},{"shortName":"workflow-aggregator","version":"596"},{"shortName":"zulip","version":"0.1"}]}`))
		}
	}))
	defer srv.Close()

	jctx := Snapshot(context.Background(), testClient(srv.URL))
	if !jctx.Accessible {
		t.Fatalf("not accessible: %s", jctx.Error)
	}
	if jctx.Version != "2.426.1" {
		t.Errorf("version = %q", jctx.Version)
	}
	if len(jctx.InstalledPlugins) != 4 {
		t.Errorf("got %d plugins", len(jctx.InstalledPlugins))
	}
	if got := jctx.Categories["scm"]; len(got) != 1 || got[0] != "git" {
		t.Errorf("scm = %v", got)
	}
	if got := jctx.Categories["notification"]; len(got) != 1 || got[0] != "slack" {
		t.Errorf("notification = %v", got)
	}
	if got := jctx.Categories["pipeline"]; len(got) != 1 || got[0] != "workflow-aggregator" {
		t.Errorf("pipeline = %v", got)
	}
	if got := jctx.Categories["other"]; len(got) != 1 || got[0] != "zulip" {
		t.Errorf("other = %v", got)
	}
}

func TestSnapshotUnreachable(t *testing.T) {
	jctx := Snapshot(context.Background(), testClient("http://127.0.0.1:1"))
	if jctx.Accessible {
		t.Error("should not be accessible")
	}
	if jctx.Error == "" {
		t.Error("expected error detail")
	}
}

func TestPromptInfoAccessible(t *testing.T) {
	jctx := &Context{
		URL:              "http://localhost:8080",
		Accessible:       true,
		Version:          "2.426.1",
		InstalledPlugins: map[string]string{"git": "5.2.0"},
		Categories:       map[string][]string{"scm": {"git"}},
	}
	info := jctx.PromptInfo()
	if !strings.Contains(info, "2.426.1") {
		t.Errorf("missing version: %q", info)
	}
	if !strings.Contains(info, "scm: git") {
		t.Errorf("missing category line: %q", info)
	}
}

func TestPromptInfoUnreachable(t *testing.T) {
	jctx := &Context{URL: "http://localhost:8080"}
	info := jctx.PromptInfo()
	if !strings.Contains(info, "not accessible") {
		t.Errorf("missing fallback note: %q", info)
	}
	if !strings.Contains(info, "commonly available plugins") {
		t.Errorf("missing plugin guidance: %q", info)
	}
}

func TestCategorizeFirstMatchWins(t *testing.T) {
	// git-related names land in scm even when they also match other
	// category keywords.
	cats := categorize(map[string]string{"github-pipeline": "1.0"})
	if got := cats["scm"]; len(got) != 1 || got[0] != "github-pipeline" {
		t.Errorf("scm = %v", got)
	}
	if len(cats["pipeline"]) != 0 {
		t.Errorf("pipeline = %v", cats["pipeline"])
	}
}
