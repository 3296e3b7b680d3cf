package generate

import (
	"fmt"
	"strings"
)

// Section markers the model is instructed to emit.
const (
	markerJenkinsfile = "=== JENKINSFILE ==="
	markerJobConfig   = "=== PIPELINE_JOB_CONFIG ==="
	markerPlugins     = "=== REQUIRED_PLUGINS ==="
	markerEnd         = "=== END ==="
)

// ArtifactSet holds the three generated pipeline files. A set is always
// complete: parsing either yields all three sections or fails.
type ArtifactSet struct {
	Jenkinsfile     string `json:"jenkinsfile"`
	JobConfig       string `json:"job_config"`
	RequiredPlugins string `json:"required_plugins"`
}

// ParseResponse splits a model response into an ArtifactSet. All three
// sections must be present and non-empty. A missing trailing END marker
// is tolerated; the last section then runs to the end of the response.
func ParseResponse(text string) (*ArtifactSet, error) {
	jenkinsfile, err := section(text, markerJenkinsfile, markerJobConfig)
	if err != nil {
		return nil, err
	}
	jobConfig, err := section(text, markerJobConfig, markerPlugins)
	if err != nil {
		return nil, err
	}
	plugins, err := section(text, markerPlugins, markerEnd)
	if err != nil {
		return nil, err
	}
	return &ArtifactSet{
		Jenkinsfile:     jenkinsfile,
		JobConfig:       jobConfig,
		RequiredPlugins: plugins,
	}, nil
}

func section(text, start, end string) (string, error) {
	i := strings.Index(text, start)
	if i < 0 {
		return "", &GenerationError{Stage: "parse", Err: fmt.Errorf("response missing %s section", start)}
	}
	body := text[i+len(start):]
	if j := strings.Index(body, end); j >= 0 {
		body = body[:j]
	}
	body = strings.TrimSpace(stripFence(body))
	if body == "" {
		return "", &GenerationError{Stage: "parse", Err: fmt.Errorf("%s section is empty", start)}
	}
	return body, nil
}

// stripFence removes a markdown code fence wrapping a whole section.
// Models sometimes fence file contents despite instructions.
func stripFence(body string) string {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "```") {
		return body
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return body
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
