package scm

// vendor is a CI provider that exposes the build commit in its
// environment.
type vendor struct {
	name      string
	detectVar string
	shaVar    string
	branchVar string
}

var vendors = []vendor{
	{name: "GitHub Actions", detectVar: "GITHUB_ACTIONS", shaVar: "GITHUB_SHA", branchVar: "GITHUB_REF_NAME"},
	{name: "GitLab CI", detectVar: "GITLAB_CI", shaVar: "CI_COMMIT_SHA", branchVar: "CI_COMMIT_BRANCH"},
	{name: "CircleCI", detectVar: "CIRCLECI", shaVar: "CIRCLE_SHA1", branchVar: "CIRCLE_BRANCH"},
	{name: "Buildkite", detectVar: "BUILDKITE", shaVar: "BUILDKITE_COMMIT", branchVar: "BUILDKITE_BRANCH"},
	{name: "Vercel", detectVar: "VERCEL", shaVar: "VERCEL_GIT_COMMIT_SHA", branchVar: "VERCEL_GIT_COMMIT_REF"},
}

// State is the branch and commit of a checkout. Empty fields are unknown.
type State struct {
	Type   string `json:"type" yaml:"type" toml:"type"`
	SHA    string `json:"sha,omitempty" yaml:"sha,omitempty" toml:"sha,omitempty"`
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty" toml:"branch,omitempty"`
}

// GetState reads the branch and commit for dir. On CI the provider's
// variables are used; git is asked only when they yield nothing. lookup
// reads an environment variable.
func GetState(lookup func(string) (string, bool), g *Git, dir string) State {
	state := State{Type: "git"}

	if isCI(lookup) {
		if v, ok := inferVendor(lookup); ok {
			state.SHA, _ = lookup(v.shaVar)
			state.Branch, _ = lookup(v.branchVar)
		}
	}

	if state.Branch == "" && state.SHA == "" {
		state.Branch, _ = g.CurrentBranch(dir)
		state.SHA, _ = g.CurrentSHA(dir)
	}
	return state
}

func isCI(lookup func(string) (string, bool)) bool {
	if v, ok := lookup("CI"); ok && v != "" {
		return true
	}
	_, ok := inferVendor(lookup)
	return ok
}

func inferVendor(lookup func(string) (string, bool)) (vendor, bool) {
	for _, v := range vendors {
		if val, ok := lookup(v.detectVar); ok && val != "" {
			return v, true
		}
	}
	return vendor{}, false
}
