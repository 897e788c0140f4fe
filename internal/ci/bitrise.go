package ci

import "github.com/codecov/cli/internal/resolver"

// Bitrise reads the environment documented at
// https://devcenter.bitrise.io/en/references/available-environment-variables.html
type Bitrise struct{}

func (Bitrise) Detect() bool        { return envSet("CI") && envSet("BITRISE_IO") }
func (Bitrise) ServiceName() string { return "Bitrise" }

func (Bitrise) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("GIT_CLONE_COMMIT_HASH")
	case resolver.FieldBuildURL:
		return env("BITRISE_BUILD_URL")
	case resolver.FieldBuildCode:
		return env("BITRISE_BUILD_NUMBER")
	case resolver.FieldPullRequestNumber:
		return env("BITRISE_PULL_REQUEST")
	case resolver.FieldBranch:
		return env("BITRISE_GIT_BRANCH")
	case resolver.FieldService:
		return "bitrise"
	}
	return ""
}
