package analyze

import "strings"

// stackInfo is the inferred technology inventory of a checkout.
type stackInfo struct {
	techStack      []string
	buildTools     []string
	testFrameworks []string
	primary        string
}

// keywordRule adds a stack entry when a keyword appears in a manifest excerpt.
type keywordRule struct {
	keyword string
	stack   string
}

var packageJSONRules = []keywordRule{
	{"react", "React"},
	{"vue", "Vue.js"},
	{"angular", "Angular"},
	{"next", "Next.js"},
	{"express", "Express"},
}

var pyprojectRules = []keywordRule{
	{"django", "Django"},
	{"flask", "Flask"},
	{"fastapi", "FastAPI"},
}

// source code extensions counted as source files and used for the
// extension-based fallback
var sourceExtensions = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".mjs": true,
	".py": true, ".pyx": true,
	".java": true, ".kt": true, ".scala": true,
	".rs": true, ".go": true, ".php": true, ".rb": true,
	".c": true, ".cpp": true, ".cc": true, ".cxx": true, ".h": true, ".hpp": true,
	".cs": true, ".swift": true, ".dart": true, ".vue": true,
	".html": true, ".htm": true, ".css": true, ".scss": true, ".sass": true, ".less": true,
	".sql": true, ".sh": true, ".bash": true, ".zsh": true,
}

// detectStack infers languages, build tooling, and test frameworks from the
// manifest files and, failing that, from file extensions. Deterministic for
// identical inputs.
func detectStack(keyFiles []KeyFile, st Structure) stackInfo {
	info := stackInfo{primary: "Unknown"}
	files := make(map[string]string, len(keyFiles))
	for _, kf := range keyFiles {
		files[kf.Name] = strings.ToLower(kf.Excerpt)
	}

	if content, ok := files["package.json"]; ok {
		info.add("Node.js")
		info.buildTools = append(info.buildTools, "npm")
		info.primary = "JavaScript"
		for _, r := range packageJSONRules {
			if strings.Contains(content, r.keyword) {
				info.add(r.stack)
			}
		}
		if strings.Contains(content, "jest") {
			info.testFrameworks = append(info.testFrameworks, "Jest")
		}
		if strings.Contains(content, "cypress") {
			info.testFrameworks = append(info.testFrameworks, "Cypress")
		}
		if strings.Contains(content, "typescript") {
			info.add("TypeScript")
			info.primary = "TypeScript"
		}
	}
	if _, ok := files["yarn.lock"]; ok {
		info.buildTools = append(info.buildTools, "Yarn")
	}

	if content, ok := files["pom.xml"]; ok {
		info.add("Java")
		info.buildTools = append(info.buildTools, "Maven")
		info.primary = "Java"
		if strings.Contains(content, "spring") {
			info.add("Spring Boot")
		}
		if strings.Contains(content, "junit") {
			info.testFrameworks = append(info.testFrameworks, "JUnit")
		}
	}
	if _, ok := files["build.gradle"]; ok {
		if !info.has("Java") {
			info.add("Java")
			info.primary = "Java"
		}
		info.buildTools = append(info.buildTools, "Gradle")
	}

	if _, ok := files["Cargo.toml"]; ok {
		info.add("Rust")
		info.buildTools = append(info.buildTools, "Cargo")
		info.primary = "Rust"
	}

	if hasAny(files, "requirements.txt", "pyproject.toml", "setup.py") {
		info.add("Python")
		info.buildTools = append(info.buildTools, "pip")
		info.primary = "Python"
		if content, ok := files["pyproject.toml"]; ok {
			for _, r := range pyprojectRules {
				if strings.Contains(content, r.keyword) {
					info.add(r.stack)
				}
			}
			if strings.Contains(content, "pytest") {
				info.testFrameworks = append(info.testFrameworks, "pytest")
			}
		}
	}

	if _, ok := files["go.mod"]; ok {
		info.add("Go")
		info.buildTools = append(info.buildTools, "Go modules")
		info.primary = "Go"
	}
	if _, ok := files["pubspec.yaml"]; ok {
		info.add("Flutter")
		info.buildTools = append(info.buildTools, "Flutter")
		info.primary = "Dart"
	}
	if _, ok := files["composer.json"]; ok {
		info.add("PHP")
		info.buildTools = append(info.buildTools, "Composer")
		info.primary = "PHP"
	}
	if hasAny(files, "Dockerfile", "docker-compose.yml") {
		info.add("Docker")
		info.buildTools = append(info.buildTools, "Docker")
	}

	// No manifests recognized: fall back to file extensions.
	if len(info.techStack) == 0 && len(st.Extensions) > 0 {
		ext := st.Extensions
		if hasAnyExt(ext, ".js", ".jsx", ".ts", ".tsx") {
			info.add("JavaScript")
			info.primary = "JavaScript"
			if hasAnyExt(ext, ".ts", ".tsx") {
				info.add("TypeScript")
				info.primary = "TypeScript"
			}
		}
		if ext[".py"] > 0 {
			info.add("Python")
			info.primary = "Python"
		}
		if ext[".java"] > 0 {
			info.add("Java")
			info.primary = "Java"
		}
		if ext[".rs"] > 0 {
			info.add("Rust")
			info.primary = "Rust"
		}
		if ext[".go"] > 0 {
			info.add("Go")
			info.primary = "Go"
		}
	}

	return info
}

func (i *stackInfo) add(s string) {
	if !i.has(s) {
		i.techStack = append(i.techStack, s)
	}
}

func (i *stackInfo) has(s string) bool {
	for _, t := range i.techStack {
		if t == s {
			return true
		}
	}
	return false
}

func hasAny(files map[string]string, names ...string) bool {
	for _, n := range names {
		if _, ok := files[n]; ok {
			return true
		}
	}
	return false
}

func hasAnyExt(exts map[string]int, names ...string) bool {
	for _, n := range names {
		if exts[n] > 0 {
			return true
		}
	}
	return false
}
