package analyze

// KeyFile is a manifest or build file found in the checkout, with a bounded
// excerpt of its contents for prompt embedding.
type KeyFile struct {
	Name    string `json:"name"`
	Excerpt string `json:"excerpt"`
}

// Structure summarizes the file tree of a checkout.
type Structure struct {
	Directories []string       `json:"directories"`
	Extensions  map[string]int `json:"extensions"`
	TotalFiles  int            `json:"total_files"`
	SourceFiles int            `json:"source_files"`
}

// Summary is the immutable analysis of one repository checkout.
// Built once per run; every field is derived from local file contents only.
type Summary struct {
	RepoURL         string    `json:"repo_url"`
	Owner           string    `json:"owner"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DefaultBranch   string    `json:"default_branch"`
	PrimaryLanguage string    `json:"primary_language"`
	TechStack       []string  `json:"tech_stack"`
	BuildTools      []string  `json:"build_tools"`
	TestFrameworks  []string  `json:"test_frameworks"`
	KeyFiles        []KeyFile `json:"key_files"`
	Structure       Structure `json:"structure"`
	SSHConfigured   bool      `json:"ssh_configured"`
	Text            string    `json:"summary"`
}
