package ci

import "github.com/codecov/cli/internal/resolver"

// Jenkins reads the environment documented at
// https://www.jenkins.io/doc/book/pipeline/jenkinsfile/#using-environment-variables
type Jenkins struct{}

func (Jenkins) Detect() bool        { return envSet("JENKINS_URL") }
func (Jenkins) ServiceName() string { return "Jenkins" }

func (Jenkins) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldBuildURL:
		return env("BUILD_URL")
	case resolver.FieldBuildCode:
		return env("BUILD_NUMBER")
	case resolver.FieldPullRequestNumber:
		return env("CHANGE_ID")
	case resolver.FieldBranch:
		return env("BRANCH_NAME")
	case resolver.FieldService:
		return "jenkins"
	}
	return ""
}
