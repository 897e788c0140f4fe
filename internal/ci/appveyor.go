package ci

import "github.com/codecov/cli/internal/resolver"

// Appveyor reads the environment documented at
// https://www.appveyor.com/docs/environment-variables/
type Appveyor struct{}

func (Appveyor) Detect() bool        { return envSet("CI") && envSet("APPVEYOR") }
func (Appveyor) ServiceName() string { return "AppVeyor" }

func (Appveyor) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return firstEnv("APPVEYOR_PULL_REQUEST_HEAD_COMMIT", "APPVEYOR_REPO_COMMIT")
	case resolver.FieldBuildURL:
		url := env("APPVEYOR_URL")
		repo := env("APPVEYOR_REPO_NAME")
		buildID := env("APPVEYOR_BUILD_ID")
		jobID := env("APPVEYOR_JOB_ID")
		if url != "" && repo != "" && buildID != "" && jobID != "" {
			return url + "/project/" + repo + "/builds/" + buildID + "/job/" + jobID
		}
		return ""
	case resolver.FieldBuildCode:
		return env("APPVEYOR_JOB_ID")
	case resolver.FieldJobCode:
		account := env("APPVEYOR_ACCOUNT_NAME")
		slug := env("APPVEYOR_PROJECT_SLUG")
		version := env("APPVEYOR_BUILD_VERSION")
		if account != "" && slug != "" && version != "" {
			return account + "/" + slug + "/" + version
		}
		return ""
	case resolver.FieldPullRequestNumber:
		return env("APPVEYOR_PULL_REQUEST_NUMBER")
	case resolver.FieldSlug:
		return env("APPVEYOR_REPO_NAME")
	case resolver.FieldBranch:
		return env("APPVEYOR_REPO_BRANCH")
	case resolver.FieldService:
		return "appveyor"
	}
	return ""
}
