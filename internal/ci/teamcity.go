package ci

import "github.com/codecov/cli/internal/resolver"

// Teamcity reads the environment documented at
// https://www.jetbrains.com/help/teamcity/predefined-build-parameters.html
type Teamcity struct{}

func (Teamcity) Detect() bool        { return envSet("TEAMCITY_VERSION") }
func (Teamcity) ServiceName() string { return "Teamcity" }

func (Teamcity) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("BUILD_VCS_NUMBER")
	case resolver.FieldBuildCode:
		return env("BUILD_NUMBER")
	case resolver.FieldBranch:
		return env("BRANCH_NAME")
	case resolver.FieldService:
		return "teamcity"
	}
	return ""
}
