package artifact

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pipepilot/pipepilot/internal/analyze"
	"github.com/pipepilot/pipepilot/internal/generate"
	"github.com/pipepilot/pipepilot/internal/jenkins"
)

func TestSaveAndLoadArtifacts(t *testing.T) {
	s := NewStore(t.TempDir())
	set := &generate.ArtifactSet{
		Jenkinsfile:     "pipeline { agent any }",
		JobConfig:       "<flow-definition/>",
		RequiredPlugins: "<plugins><plugin>git@latest</plugin></plugins>",
	}

	saved, err := s.SaveArtifacts(set)
	if err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("saved %d files, want 3", len(saved))
	}
	wantNames := []string{FileJenkinsfile, FileJobConfig, FileRequiredPlugins}
	for i, f := range saved {
		if f.Name != wantNames[i] {
			t.Errorf("saved[%d].Name = %q, want %q", i, f.Name, wantNames[i])
		}
		if f.Size == 0 {
			t.Errorf("saved[%d].Size = 0", i)
		}
	}

	loaded, err := s.LoadArtifacts()
	if err != nil {
		t.Fatalf("LoadArtifacts: %v", err)
	}
	if strings.TrimSpace(loaded.Jenkinsfile) != set.Jenkinsfile {
		t.Errorf("Jenkinsfile round trip = %q", loaded.Jenkinsfile)
	}
}

func TestSaveArtifactsCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	s := NewStore(dir)
	_, err := s.SaveArtifacts(&generate.ArtifactSet{Jenkinsfile: "x", JobConfig: "y", RequiredPlugins: "z"})
	if err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, FileJenkinsfile)); err != nil {
		t.Errorf("Jenkinsfile not written: %v", err)
	}
}

func TestSaveArtifactsNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if _, err := s.SaveArtifacts(&generate.ArtifactSet{Jenkinsfile: "x", JobConfig: "y", RequiredPlugins: "z"}); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	summary := &analyze.Summary{
		RepoURL:         "https://github.com/acme/widgets",
		Owner:           "acme",
		Name:            "widgets",
		PrimaryLanguage: "Go",
		TechStack:       []string{"Go"},
		Structure:       analyze.Structure{TotalFiles: 3, Extensions: map[string]int{".go": 2}},
	}
	if err := s.SaveAnalysis(summary); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	loaded, err := s.LoadAnalysis()
	if err != nil {
		t.Fatalf("LoadAnalysis: %v", err)
	}
	if !reflect.DeepEqual(loaded, summary) {
		t.Errorf("round trip = %+v, want %+v", loaded, summary)
	}
}

func TestJenkinsContextRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	jctx := &jenkins.Context{
		URL:              "http://localhost:8080",
		Accessible:       true,
		Version:          "2.426.1",
		InstalledPlugins: map[string]string{"git": "5.2.0"},
	}
	if err := s.SaveJenkinsContext(jctx); err != nil {
		t.Fatalf("SaveJenkinsContext: %v", err)
	}
	loaded, err := s.LoadJenkinsContext()
	if err != nil {
		t.Fatalf("LoadJenkinsContext: %v", err)
	}
	if loaded.Version != "2.426.1" || loaded.InstalledPlugins["git"] != "5.2.0" {
		t.Errorf("round trip = %+v", loaded)
	}
}

func TestLoadArtifactsMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.LoadArtifacts(); err == nil {
		t.Error("expected error for empty store")
	}
}
