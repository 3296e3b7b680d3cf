// Package artifact persists generated pipeline files and run metadata
// under the output directory.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pipepilot/pipepilot/internal/analyze"
	"github.com/pipepilot/pipepilot/internal/generate"
	"github.com/pipepilot/pipepilot/internal/jenkins"
)

// File names written into the output directory.
const (
	FileJenkinsfile     = "Jenkinsfile"
	FileJobConfig       = "pipeline_job_config.xml"
	FileRequiredPlugins = "required_plugins.xml"
	FileAnalysis        = "repository_analysis.json"
	FileJenkinsContext  = "jenkins_context.json"
)

// SavedFile describes one file written by the store.
type SavedFile struct {
	Name string
	Size int
}

// Store reads and writes run artifacts rooted at one output directory.
type Store struct {
	dir string
}

// NewStore creates a Store for the given output directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// writeAtomic writes data via a temp file in the same directory, then
// renames, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up temp file on any error path.
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmpName, path, err)
	}
	tmpName = "" // prevent deferred removal
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	return writeAtomic(path, data)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}

// SaveArtifacts writes the three pipeline files. Each file is written
// atomically; the set as a whole is not transactional.
func (s *Store) SaveArtifacts(set *generate.ArtifactSet) ([]SavedFile, error) {
	files := []struct {
		name    string
		content string
	}{
		{FileJenkinsfile, set.Jenkinsfile},
		{FileJobConfig, set.JobConfig},
		{FileRequiredPlugins, set.RequiredPlugins},
	}

	var saved []SavedFile
	for _, f := range files {
		data := []byte(f.content)
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		if err := writeAtomic(s.path(f.name), data); err != nil {
			return saved, fmt.Errorf("save %s: %w", f.name, err)
		}
		saved = append(saved, SavedFile{Name: f.name, Size: len(data)})
	}
	return saved, nil
}

// LoadArtifacts reads a previously saved artifact set.
func (s *Store) LoadArtifacts() (*generate.ArtifactSet, error) {
	set := &generate.ArtifactSet{}
	reads := []struct {
		name string
		dst  *string
	}{
		{FileJenkinsfile, &set.Jenkinsfile},
		{FileJobConfig, &set.JobConfig},
		{FileRequiredPlugins, &set.RequiredPlugins},
	}
	for _, r := range reads {
		data, err := os.ReadFile(s.path(r.name))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", r.name, err)
		}
		*r.dst = string(data)
	}
	return set, nil
}

// SaveAnalysis persists the repository analysis as JSON.
func (s *Store) SaveAnalysis(summary *analyze.Summary) error {
	return writeJSON(s.path(FileAnalysis), summary)
}

// LoadAnalysis reads a previously saved repository analysis.
func (s *Store) LoadAnalysis() (*analyze.Summary, error) {
	summary := &analyze.Summary{}
	if err := readJSON(s.path(FileAnalysis), summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// SaveJenkinsContext persists the Jenkins snapshot as JSON.
func (s *Store) SaveJenkinsContext(jctx *jenkins.Context) error {
	return writeJSON(s.path(FileJenkinsContext), jctx)
}

// LoadJenkinsContext reads a previously saved Jenkins snapshot.
func (s *Store) LoadJenkinsContext() (*jenkins.Context, error) {
	jctx := &jenkins.Context{}
	if err := readJSON(s.path(FileJenkinsContext), jctx); err != nil {
		return nil, err
	}
	return jctx, nil
}
