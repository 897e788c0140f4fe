package ci

import (
	"context"
	"regexp"

	"github.com/codecov/cli/internal/resolver"
	"github.com/codecov/cli/internal/vcs"
)

var (
	ghPullRefRe   = regexp.MustCompile(`refs/pull/(\d+)/merge`)
	ghBranchRefRe = regexp.MustCompile(`refs/heads/(.*)`)
)

// GithubActions reads the environment documented at
// https://docs.github.com/en/actions/learn-github-actions/environment-variables
type GithubActions struct {
	Probe vcs.Probe
}

func (GithubActions) Detect() bool        { return envSet("GITHUB_ACTIONS") }
func (GithubActions) ServiceName() string { return "GithubActions" }

func (a GithubActions) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return a.commitSHA()
	case resolver.FieldBuildURL:
		return a.buildURL()
	case resolver.FieldBuildCode:
		return env("GITHUB_RUN_ID")
	case resolver.FieldJobCode:
		return env("GITHUB_WORKFLOW")
	case resolver.FieldPullRequestNumber:
		return a.pullRequestNumber()
	case resolver.FieldSlug:
		return env("GITHUB_REPOSITORY")
	case resolver.FieldBranch:
		return a.branch()
	case resolver.FieldService:
		return "github-actions"
	}
	return ""
}

// commitSHA returns GITHUB_SHA, except on pull requests where that
// variable carries the ephemeral merge commit. There the second
// parent of HEAD is the real branch head; checkout must have run with
// enough depth for the lookup, otherwise the raw variable is kept.
func (a GithubActions) commitSHA() string {
	commit := env("GITHUB_SHA")
	if a.pullRequestNumber() == "" || a.Probe == nil {
		return commit
	}
	parents := a.Probe.HeadParents(context.Background())
	if len(parents) == 2 {
		return parents[1]
	}
	return commit
}

func (a GithubActions) buildURL() string {
	serverURL := env("GITHUB_SERVER_URL")
	slug := env("GITHUB_REPOSITORY")
	buildCode := env("GITHUB_RUN_ID")
	if serverURL != "" && slug != "" && buildCode != "" {
		return serverURL + "/" + slug + "/actions/runs/" + buildCode
	}
	return ""
}

func (a GithubActions) pullRequestNumber() string {
	if !envSet("GITHUB_HEAD_REF") {
		return ""
	}
	m := ghPullRefRe.FindStringSubmatch(env("GITHUB_REF"))
	if m == nil {
		return ""
	}
	return m[1]
}

func (a GithubActions) branch() string {
	if branch := env("GITHUB_HEAD_REF"); branch != "" {
		return branch
	}
	m := ghBranchRefRe.FindStringSubmatch(env("GITHUB_REF"))
	if m == nil {
		return ""
	}
	return m[1]
}
