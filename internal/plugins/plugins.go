// Package plugins parses required-plugin manifests and reconciles them
// against the set installed on a Jenkins instance.
package plugins

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Plugin is one required Jenkins plugin.
type Plugin struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// String returns the name@version form.
func (p Plugin) String() string {
	return p.Name + "@" + p.Version
}

var pluginPattern = regexp.MustCompile(`<plugin[^>]*>([^<]+)</plugin>`)

// Parse extracts plugins from a required-plugins XML document. Entries
// are `<plugin>name@version</plugin>`; a bare name gets version
// "latest". Duplicate names keep the first occurrence.
func Parse(doc string) ([]Plugin, error) {
	matches := pluginPattern.FindAllStringSubmatch(doc, -1)
	if matches == nil {
		return nil, fmt.Errorf("no <plugin> entries found")
	}

	seen := make(map[string]bool)
	var plugins []Plugin
	for _, m := range matches {
		entry := strings.TrimSpace(m[1])
		if entry == "" {
			continue
		}
		name, version := entry, "latest"
		if at := strings.LastIndex(entry, "@"); at > 0 {
			name, version = entry[:at], entry[at+1:]
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		plugins = append(plugins, Plugin{Name: name, Version: version})
	}
	if len(plugins) == 0 {
		return nil, fmt.Errorf("no <plugin> entries found")
	}
	return plugins, nil
}

// Diff is the result of comparing required plugins against installed ones.
type Diff struct {
	Missing []Plugin
}

// Compute returns the required plugins absent from installed. Comparison
// is by name only; an installed plugin satisfies the requirement at any
// version. Missing plugins are sorted by name.
func Compute(required []Plugin, installed map[string]string) Diff {
	var d Diff
	for _, p := range required {
		if _, ok := installed[p.Name]; !ok {
			d.Missing = append(d.Missing, p)
		}
	}
	sort.Slice(d.Missing, func(i, j int) bool { return d.Missing[i].Name < d.Missing[j].Name })
	return d
}
