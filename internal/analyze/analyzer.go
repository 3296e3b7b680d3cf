package analyze

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pipepilot/pipepilot/internal/repo"
)

// excerptLimit caps how much of each manifest file is carried into the prompt.
const excerptLimit = 3000

// manifestFiles is the ordered set of configuration files read from a
// checkout. Order is preserved in Summary.KeyFiles.
var manifestFiles = []string{
	"package.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml",
	"pom.xml", "build.gradle", "gradle.properties", "settings.gradle",
	"Cargo.toml", "Cargo.lock",
	"requirements.txt", "pyproject.toml", "setup.py", "Pipfile",
	"go.mod", "go.sum",
	"pubspec.yaml", "pubspec.lock",
	"composer.json", "composer.lock",
	"Gemfile", "Gemfile.lock",
	"Dockerfile", "docker-compose.yml", "docker-compose.yaml",
	"Makefile", "CMakeLists.txt",
	".gitignore", ".dockerignore",
	"tsconfig.json", "webpack.config.js", "vite.config.js",
	"jest.config.js", "cypress.json", "pytest.ini",
}

// directories excluded from the tree walk
var ignoredDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	"target":       true,
	"build":        true,
	"dist":         true,
}

// Analyzer converts a checkout into a Summary. No network access; the result
// is deterministic for identical file contents.
type Analyzer struct {
	git      repo.GitRunner
	progress io.Writer
}

// NewAnalyzer creates an Analyzer. The git runner is only used to read the
// current branch name from the checkout.
func NewAnalyzer(git repo.GitRunner) *Analyzer {
	return &Analyzer{git: git}
}

// SetProgress sets a writer for live progress output.
func (a *Analyzer) SetProgress(w io.Writer) {
	a.progress = w
}

func (a *Analyzer) logf(format string, args ...interface{}) {
	if a.progress != nil {
		fmt.Fprintf(a.progress, "  → "+format+"\n", args...)
	}
}

// Analyze walks the checkout and produces its Summary.
func (a *Analyzer) Analyze(c *repo.Checkout) (*Summary, error) {
	if _, err := os.Stat(c.Path); err != nil {
		return nil, fmt.Errorf("checkout path %s: %w", c.Path, err)
	}

	keyFiles := readKeyFiles(c.Path)
	structure := walkStructure(c.Path)
	stack := detectStack(keyFiles, structure)

	branch := c.Branch
	if a.git != nil {
		if out, err := a.git.Run(c.Path, "branch", "--show-current"); err == nil && out != "" {
			branch = out
		}
	}
	if branch == "" {
		branch = "main"
	}

	s := &Summary{
		RepoURL:         c.URL,
		Owner:           c.Owner,
		Name:            c.Name,
		Description:     readDescription(c.Path),
		DefaultBranch:   branch,
		PrimaryLanguage: stack.primary,
		TechStack:       stack.techStack,
		BuildTools:      stack.buildTools,
		TestFrameworks:  stack.testFrameworks,
		KeyFiles:        keyFiles,
		Structure:       structure,
		SSHConfigured:   c.SSH,
	}
	s.Text = summaryText(s)

	a.logf("language %s, stack [%s], %d key files",
		s.PrimaryLanguage, strings.Join(s.TechStack, ", "), len(s.KeyFiles))
	return s, nil
}

// readKeyFiles reads recognized manifest files in their fixed order.
func readKeyFiles(root string) []KeyFile {
	var found []KeyFile
	for _, name := range manifestFiles {
		path := filepath.Join(root, name)
		fi, err := os.Stat(path)
		if err != nil || fi.IsDir() {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		excerpt := string(data)
		if len(excerpt) > excerptLimit {
			excerpt = excerpt[:excerptLimit]
		}
		found = append(found, KeyFile{Name: name, Excerpt: excerpt})
	}
	return found
}

// walkStructure collects directory names (two levels deep), extension counts,
// and file totals, skipping dot-dirs and common build output.
func walkStructure(root string) Structure {
	st := Structure{
		Directories: []string{},
		Extensions:  map[string]int{},
	}

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			if strings.Count(rel, string(filepath.Separator)) < 2 {
				st.Directories = append(st.Directories, filepath.ToSlash(rel))
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		st.TotalFiles++
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != "" {
			st.Extensions[ext]++
		}
		if sourceExtensions[ext] {
			st.SourceFiles++
		}
		return nil
	})

	sort.Strings(st.Directories)
	return st
}

// readDescription extracts the first content line of a README.
func readDescription(root string) string {
	for _, name := range []string{"README.md", "README.rst", "README.txt", "readme.md"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		text := string(data)
		if len(text) > 500 {
			text = text[:500]
		}
		var title string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "#") {
				if title == "" {
					title = strings.TrimSpace(strings.TrimLeft(line, "#"))
				}
				continue
			}
			return line
		}
		return title
	}
	return ""
}

// summaryText renders the compact description embedded in AI prompts.
func summaryText(s *Summary) string {
	join := func(items []string) string {
		if len(items) == 0 {
			return "None detected"
		}
		return strings.Join(items, ", ")
	}

	names := make([]string, len(s.KeyFiles))
	for i, kf := range s.KeyFiles {
		names[i] = kf.Name
	}
	keyFiles := "None found"
	if len(names) > 0 {
		keyFiles = strings.Join(names, ", ")
	}

	dirs := s.Structure.Directories
	if len(dirs) > 10 {
		dirs = dirs[:10]
	}
	mainDirs := "None"
	if len(dirs) > 0 {
		mainDirs = strings.Join(dirs, ", ")
	}

	desc := s.Description
	if desc == "" {
		desc = "No description found"
	}

	var b strings.Builder
	b.WriteString("Repository Analysis (Local Clone):\n")
	fmt.Fprintf(&b, "Primary Language: %s\n", s.PrimaryLanguage)
	fmt.Fprintf(&b, "Technology Stack: %s\n", join(s.TechStack))
	fmt.Fprintf(&b, "Build Tools: %s\n", join(s.BuildTools))
	fmt.Fprintf(&b, "Test Frameworks: %s\n", join(s.TestFrameworks))
	fmt.Fprintf(&b, "Configuration Files: %s\n", keyFiles)
	fmt.Fprintf(&b, "Total Files: %d\n", s.Structure.TotalFiles)
	fmt.Fprintf(&b, "Source Files: %d\n", s.Structure.SourceFiles)
	fmt.Fprintf(&b, "Main Directories: %s\n", mainDirs)
	fmt.Fprintf(&b, "Description: %s\n", desc)
	fmt.Fprintf(&b, "Default Branch: %s", s.DefaultBranch)
	return b.String()
}
