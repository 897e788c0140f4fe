package ci

import (
	"strings"

	"github.com/codecov/cli/internal/resolver"
)

// AzurePipelines reads the environment documented at
// https://learn.microsoft.com/en-us/azure/devops/pipelines/build/variables
type AzurePipelines struct{}

func (AzurePipelines) Detect() bool        { return envSet("SYSTEM_TEAMFOUNDATIONCOLLECTIONURI") }
func (AzurePipelines) ServiceName() string { return "AzurePipelines" }

func (AzurePipelines) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("BUILD_SOURCEVERSION")
	case resolver.FieldBuildURL:
		if envSet("SYSTEM_TEAMPROJECT") && envSet("BUILD_BUILDID") {
			return env("SYSTEM_TEAMFOUNDATIONCOLLECTIONURI") + env("SYSTEM_TEAMPROJECT") +
				"/_build/results?buildId=" + env("BUILD_BUILDID")
		}
		return ""
	case resolver.FieldBuildCode:
		return env("BUILD_BUILDNUMBER")
	case resolver.FieldJobCode:
		return env("BUILD_BUILDID")
	case resolver.FieldPullRequestNumber:
		return firstEnv("SYSTEM_PULLREQUEST_PULLREQUESTNUMBER", "SYSTEM_PULLREQUEST_PULLREQUESTID")
	case resolver.FieldSlug:
		return env("BUILD_REPOSITORY_NAME")
	case resolver.FieldBranch:
		return strings.TrimPrefix(env("BUILD_SOURCEBRANCH"), "refs/heads/")
	case resolver.FieldService:
		return "azure_pipelines"
	}
	return ""
}
