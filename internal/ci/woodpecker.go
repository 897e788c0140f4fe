package ci

import (
	"os"

	"github.com/codecov/cli/internal/resolver"
)

// Woodpecker reads the environment documented at
// https://woodpecker-ci.org/docs/usage/environment
type Woodpecker struct{}

func (Woodpecker) Detect() bool        { return os.Getenv("CI") == "woodpecker" }
func (Woodpecker) ServiceName() string { return "Woodpecker" }

func (Woodpecker) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("CI_COMMIT_SHA")
	case resolver.FieldBuildURL:
		return env("CI_BUILD_LINK")
	case resolver.FieldBuildCode:
		return env("CI_BUILD_NUMBER")
	case resolver.FieldJobCode:
		return env("CI_JOB_NUMBER")
	case resolver.FieldPullRequestNumber:
		return env("CI_COMMIT_PULL_REQUEST")
	case resolver.FieldSlug:
		return env("CI_REPO")
	case resolver.FieldBranch:
		return firstEnv("CI_COMMIT_SOURCE_BRANCH", "CI_COMMIT_BRANCH")
	case resolver.FieldService:
		return "woodpecker"
	}
	return ""
}
