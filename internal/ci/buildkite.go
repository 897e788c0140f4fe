package ci

import "github.com/codecov/cli/internal/resolver"

// Buildkite reads the environment documented at
// https://buildkite.com/docs/pipelines/environment-variables
type Buildkite struct{}

func (Buildkite) Detect() bool        { return envSet("BUILDKITE") }
func (Buildkite) ServiceName() string { return "BuildKite" }

func (Buildkite) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("BUILDKITE_COMMIT")
	case resolver.FieldBuildURL:
		return env("BUILDKITE_BUILD_URL")
	case resolver.FieldBuildCode:
		return env("BUILDKITE_BUILD_NUMBER")
	case resolver.FieldJobCode:
		return env("BUILDKITE_JOB_ID")
	case resolver.FieldPullRequestNumber:
		// "false" when this branch is not a pull request.
		if pr := env("BUILDKITE_PULL_REQUEST"); pr != "false" {
			return pr
		}
		return ""
	case resolver.FieldSlug:
		org, repo := env("BUILDKITE_ORGANIZATION_SLUG"), env("BUILDKITE_PIPELINE_SLUG")
		if org != "" && repo != "" {
			return org + "/" + repo
		}
		return ""
	case resolver.FieldBranch:
		return env("BUILDKITE_BRANCH")
	case resolver.FieldService:
		return "buildkite"
	}
	return ""
}
