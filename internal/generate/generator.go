// Package generate turns a repository analysis into Jenkins pipeline
// artifacts via a chat model, and re-generates them from user feedback.
package generate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pipepilot/pipepilot/internal/analyze"
	"github.com/pipepilot/pipepilot/internal/jenkins"
	"github.com/pipepilot/pipepilot/internal/llm"
	"github.com/pipepilot/pipepilot/internal/prompt"
)

// ChatClient is the model interface the generator needs.
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// Generator builds prompt messages and parses model responses into
// artifact sets.
type Generator struct {
	chat ChatClient
}

// NewGenerator creates a Generator backed by the given chat client.
func NewGenerator(chat ChatClient) *Generator {
	return &Generator{chat: chat}
}

// InitialMessages builds the first-round conversation: the generation
// system prompt plus a user message describing the repository.
func (g *Generator) InitialMessages(summary *analyze.Summary, jctx *jenkins.Context) ([]llm.Message, error) {
	system, err := prompt.RenderBuiltin(prompt.SystemGenerate, map[string]string{
		"jenkins_context": jctx.PromptInfo(),
	})
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	user, err := prompt.RenderBuiltin(prompt.UserGenerate, map[string]string{
		"summary":          summary.Text,
		"repo_url":         summary.RepoURL,
		"description":      summary.Description,
		"default_branch":   summary.DefaultBranch,
		"key_files":        keyFileList(summary.KeyFiles),
		"total_files":      strconv.Itoa(summary.Structure.TotalFiles),
		"source_files":     strconv.Itoa(summary.Structure.SourceFiles),
		"main_directories": strings.Join(summary.Structure.Directories, ", "),
	})
	if err != nil {
		return nil, fmt.Errorf("render user prompt: %w", err)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}, nil
}

// FeedbackMessage builds the user message for a refinement round. The
// current artifact set is embedded so the model modifies rather than
// regenerates; current may be nil when the first round failed.
func (g *Generator) FeedbackMessage(feedback string, current *ArtifactSet, summary *analyze.Summary) (llm.Message, error) {
	vars := map[string]string{
		"feedback": feedback,
		"summary":  summary.Text,
	}
	if current != nil {
		vars["jenkinsfile"] = current.Jenkinsfile
		vars["job_config"] = current.JobConfig
		vars["required_plugins"] = current.RequiredPlugins
	} else {
		vars["jenkinsfile"] = ""
		vars["job_config"] = ""
		vars["required_plugins"] = ""
	}

	content, err := prompt.RenderBuiltin(prompt.UserModify, vars)
	if err != nil {
		return llm.Message{}, fmt.Errorf("render feedback prompt: %w", err)
	}
	return llm.Message{Role: llm.RoleUser, Content: content}, nil
}

// Complete runs one generation round over the full conversation. On
// success it returns the parsed artifact set and the assistant message
// to append to the conversation. Failures are *GenerationError.
func (g *Generator) Complete(ctx context.Context, messages []llm.Message) (*ArtifactSet, llm.Message, error) {
	response, err := g.chat.Chat(ctx, messages)
	if err != nil {
		return nil, llm.Message{}, &GenerationError{Stage: "chat", Err: err}
	}

	set, err := ParseResponse(response)
	if err != nil {
		return nil, llm.Message{}, err
	}
	return set, llm.Message{Role: llm.RoleAssistant, Content: response}, nil
}

func keyFileList(files []analyze.KeyFile) string {
	if len(files) == 0 {
		return "(none found)"
	}
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "**%s:**\n%s\n\n", f.Name, f.Excerpt)
	}
	return strings.TrimSpace(b.String())
}
