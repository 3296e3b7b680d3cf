package jenkins

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Context is a snapshot of the target Jenkins instance, captured before
// generation so the pipeline can be tailored to the plugins actually
// available there.
type Context struct {
	URL              string              `json:"url"`
	Accessible       bool                `json:"accessible"`
	Version          string              `json:"version,omitempty"`
	InstalledPlugins map[string]string   `json:"installed_plugins,omitempty"`
	Categories       map[string][]string `json:"plugin_categories,omitempty"`
	Error            string              `json:"error,omitempty"`
}

// categoryKeywords maps a plugin category to the substrings that place a
// plugin short name into it. The first matching category wins, in the
// order of categoryOrder.
var categoryKeywords = map[string][]string{
	"scm":          {"git", "github", "bitbucket", "gitlab", "svn", "subversion", "mercurial"},
	"build":        {"maven", "gradle", "ant", "msbuild", "nodejs", "npm", "golang", "python", "docker"},
	"test":         {"junit", "testng", "jacoco", "cobertura", "coverage", "xunit", "cucumber"},
	"notification": {"email", "slack", "mailer", "notification", "discord", "telegram"},
	"deployment":   {"deploy", "kubernetes", "aws", "azure", "gcloud", "ssh", "publish"},
	"security":     {"credentials", "ldap", "saml", "oauth", "matrix-auth", "role"},
	"pipeline":     {"pipeline", "workflow", "stage", "blueocean", "multibranch"},
	"ui":           {"dashboard", "view", "theme", "dark", "simple-theme"},
}

var categoryOrder = []string{"scm", "build", "test", "notification", "deployment", "security", "pipeline", "ui"}

func categorize(plugins map[string]string) map[string][]string {
	categories := make(map[string][]string)
	for name := range plugins {
		lower := strings.ToLower(name)
		placed := false
		for _, cat := range categoryOrder {
			for _, kw := range categoryKeywords[cat] {
				if strings.Contains(lower, kw) {
					categories[cat] = append(categories[cat], name)
					placed = true
					break
				}
			}
			if placed {
				break
			}
		}
		if !placed {
			categories["other"] = append(categories["other"], name)
		}
	}
	for _, names := range categories {
		sort.Strings(names)
	}
	return categories
}

// Snapshot probes the instance and returns a Context. It never returns
// an error: an unreachable Jenkins produces Accessible=false with the
// failure recorded, so generation can proceed without live plugin data.
func Snapshot(ctx context.Context, c *Client) *Context {
	jctx := &Context{URL: c.BaseURL()}

	version, err := c.Version(ctx)
	if err != nil {
		jctx.Error = err.Error()
		return jctx
	}
	jctx.Accessible = true
	jctx.Version = version

	plugins, err := c.InstalledPlugins(ctx)
	if err != nil {
		jctx.Error = err.Error()
		return jctx
	}
	jctx.InstalledPlugins = plugins
	jctx.Categories = categorize(plugins)
	return jctx
}

// PromptInfo renders the snapshot as plain text for inclusion in the
// generation prompt.
func (jc *Context) PromptInfo() string {
	var b strings.Builder
	if !jc.Accessible {
		fmt.Fprintf(&b, "Jenkins instance at %s is not accessible.\n", jc.URL)
		b.WriteString("Generate a pipeline using commonly available plugins only.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Jenkins instance: %s (version %s)\n", jc.URL, jc.Version)
	fmt.Fprintf(&b, "Installed plugins: %d\n", len(jc.InstalledPlugins))
	for _, cat := range append(append([]string{}, categoryOrder...), "other") {
		names := jc.Categories[cat]
		if len(names) == 0 {
			continue
		}
		shown := names
		if len(shown) > 10 {
			shown = shown[:10]
		}
		fmt.Fprintf(&b, "  %s: %s", cat, strings.Join(shown, ", "))
		if len(names) > len(shown) {
			fmt.Fprintf(&b, " (+%d more)", len(names)-len(shown))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Write prints a human-readable report of the snapshot.
func (jc *Context) Write(w io.Writer) {
	if !jc.Accessible {
		fmt.Fprintf(w, "Jenkins at %s: not accessible\n", jc.URL)
		if jc.Error != "" {
			fmt.Fprintf(w, "  %s\n", jc.Error)
		}
		return
	}
	fmt.Fprintf(w, "Jenkins at %s\n", jc.URL)
	fmt.Fprintf(w, "  version: %s\n", jc.Version)
	fmt.Fprintf(w, "  plugins: %d installed\n", len(jc.InstalledPlugins))
	for _, cat := range append(append([]string{}, categoryOrder...), "other") {
		names := jc.Categories[cat]
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-13s %d\n", cat+":", len(names))
	}
}
