package ci

import (
	"github.com/codecov/cli/internal/resolver"
	"github.com/codecov/cli/internal/vcs"
)

// GitlabCI reads the environment documented at
// https://docs.gitlab.com/ee/ci/variables/predefined_variables.html
type GitlabCI struct{}

func (GitlabCI) Detect() bool        { return envSet("GITLAB_CI") }
func (GitlabCI) ServiceName() string { return "GitlabCI" }

func (GitlabCI) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return firstEnv("CI_MERGE_REQUEST_SOURCE_BRANCH_SHA", "CI_BUILD_REF", "CI_COMMIT_SHA")
	case resolver.FieldBuildURL:
		return env("CI_JOB_URL")
	case resolver.FieldBuildCode:
		return firstEnv("CI_BUILD_ID", "CI_JOB_ID")
	case resolver.FieldJobCode:
		return env("CI_JOB_ID")
	case resolver.FieldPullRequestNumber:
		return env("CI_MERGE_REQUEST_IID")
	case resolver.FieldSlug:
		return gitlabSlug()
	case resolver.FieldBranch:
		return firstEnv("CI_BUILD_REF_NAME", "CI_COMMIT_REF_NAME")
	case resolver.FieldService:
		return "gitlab"
	}
	return ""
}

// gitlabSlug tolerates the three shapes GitLab exposes: the project
// path, separate namespace and name variables, or only a remote URL.
func gitlabSlug() string {
	if slug := env("CI_PROJECT_PATH"); slug != "" {
		return slug
	}
	owner, name := env("CI_PROJECT_NAMESPACE"), env("CI_PROJECT_NAME")
	if owner != "" && name != "" {
		return owner + "/" + name
	}
	if remote := firstEnv("CI_BUILD_REPO", "CI_REPOSITORY_URL"); remote != "" {
		if slug, err := vcs.ParseSlug(remote); err == nil {
			return slug
		}
	}
	return ""
}
