package ci

import "github.com/codecov/cli/internal/resolver"

// CirrusCI reads the environment documented at
// https://cirrus-ci.org/guide/writing-tasks/#environment-variables
type CirrusCI struct{}

func (CirrusCI) Detect() bool        { return envSet("CIRRUS_CI") }
func (CirrusCI) ServiceName() string { return "CirrusCI" }

func (CirrusCI) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("CIRRUS_CHANGE_IN_REPO")
	case resolver.FieldBuildCode:
		return env("CIRRUS_BUILD_ID")
	case resolver.FieldJobCode:
		return env("CIRRUS_TASK_ID")
	case resolver.FieldPullRequestNumber:
		return env("CIRRUS_PR")
	case resolver.FieldSlug:
		return env("CIRRUS_REPO_FULL_NAME")
	case resolver.FieldBranch:
		return env("CIRRUS_BRANCH")
	case resolver.FieldService:
		return "cirrus"
	}
	return ""
}
