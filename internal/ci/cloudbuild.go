package ci

import "github.com/codecov/cli/internal/resolver"

// CloudBuild reads Google Cloud Build substitution variables. Builds
// must map the substitutions to environment variables on the build
// step for the adapter to see them:
// https://cloud.google.com/build/docs/configuring-builds/substitute-variable-values#map_substitutions_manually
type CloudBuild struct{}

func (CloudBuild) Detect() bool {
	return envSet("LOCATION") && envSet("PROJECT_NUMBER") && envSet("PROJECT_ID") && envSet("BUILD_ID")
}

func (CloudBuild) ServiceName() string { return "GoogleCloudBuild" }

func (CloudBuild) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("COMMIT_SHA")
	case resolver.FieldBuildURL:
		if envSet("LOCATION") && envSet("PROJECT_ID") && envSet("BUILD_ID") {
			return "https://console.cloud.google.com/cloud-build/builds;region=" +
				env("LOCATION") + "/" + env("BUILD_ID") + "?project=" + env("PROJECT_ID")
		}
		return ""
	case resolver.FieldBuildCode:
		return env("BUILD_ID")
	case resolver.FieldJobCode:
		return env("TRIGGER_NAME")
	case resolver.FieldPullRequestNumber:
		return env("_PR_NUMBER")
	case resolver.FieldSlug:
		return env("REPO_FULL_NAME")
	case resolver.FieldBranch:
		return env("BRANCH_NAME")
	case resolver.FieldService:
		return "google_cloud_build"
	}
	return ""
}
