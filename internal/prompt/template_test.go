package prompt

import (
	"strings"
	"testing"
)

func TestRenderVariables(t *testing.T) {
	out, err := Render("build {{name}} with {{tool}}", Vars{"name": "widget", "tool": "npm"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if out != "build widget with npm" {
		t.Errorf("Render() = %q", out)
	}
}

func TestRenderMissingVariable(t *testing.T) {
	_, err := Render("hello {{name}}", Vars{})
	if err == nil {
		t.Fatal("Render() expected error for missing variable")
	}
	if !strings.Contains(err.Error(), "name") {
		t.Errorf("error = %v, want missing variable named", err)
	}
}

func TestRenderConditionals(t *testing.T) {
	tmpl := "start{{#if extra}} extra: {{extra}}{{/if}} end"

	out, err := Render(tmpl, Vars{"extra": "docker"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "start extra: docker end" {
		t.Errorf("Render() = %q", out)
	}

	out, err = Render(tmpl, Vars{"extra": ""})
	if err != nil {
		t.Fatal(err)
	}
	if out != "start end" {
		t.Errorf("Render() with empty var = %q", out)
	}
}

func TestRenderNestedConditionals(t *testing.T) {
	tmpl := "{{#if a}}A{{#if b}}B{{/if}}{{/if}}"
	out, err := Render(tmpl, Vars{"a": "1", "b": "1"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "AB" {
		t.Errorf("Render() = %q, want AB", out)
	}
}

func TestRenderDanglingClose(t *testing.T) {
	if _, err := Render("text {{/if}}", Vars{}); err == nil {
		t.Fatal("Render() expected error for dangling {{/if}}")
	}
}

func TestRenderUnclosedIf(t *testing.T) {
	if _, err := Render("{{#if a}}body", Vars{"a": "1"}); err == nil {
		t.Fatal("Render() expected error for unclosed {{#if}}")
	}
}

func TestRenderBuiltinUnknown(t *testing.T) {
	if _, err := RenderBuiltin("nope.md", Vars{}); err == nil {
		t.Fatal("RenderBuiltin() expected error for unknown template")
	}
}

func TestBuiltinTemplatesRender(t *testing.T) {
	vars := Vars{
		"jenkins_context":  "Jenkins 2.452, 90 plugins installed",
		"summary":          "Primary Language: Python",
		"repo_url":         "https://github.com/acme/widget",
		"description":      "a widget",
		"default_branch":   "main",
		"key_files":        "requirements.txt (120 chars)",
		"total_files":      "12",
		"source_files":     "9",
		"main_directories": "src, tests",
		"feedback":         "add docker stage",
		"jenkinsfile":      "pipeline {}",
		"job_config":       "<flow-definition/>",
		"required_plugins": "<plugins/>",
	}

	for _, name := range []string{SystemGenerate, UserGenerate, SystemModify, UserModify} {
		out, err := RenderBuiltin(name, vars)
		if err != nil {
			t.Errorf("RenderBuiltin(%q) error: %v", name, err)
			continue
		}
		if strings.Contains(out, "{{") {
			t.Errorf("RenderBuiltin(%q) left placeholders:\n%s", name, out)
		}
	}
}

func TestSystemTemplatesNameSectionMarkers(t *testing.T) {
	for _, name := range []string{SystemGenerate, SystemModify} {
		out, err := RenderBuiltin(name, Vars{"jenkins_context": "none"})
		if err != nil {
			t.Fatal(err)
		}
		for _, marker := range []string{"=== JENKINSFILE ===", "=== PIPELINE_JOB_CONFIG ===", "=== REQUIRED_PLUGINS ===", "=== END ==="} {
			if !strings.Contains(out, marker) {
				t.Errorf("%s missing marker %q", name, marker)
			}
		}
	}
}
