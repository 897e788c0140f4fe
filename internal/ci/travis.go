package ci

import "github.com/codecov/cli/internal/resolver"

// Travis reads the environment documented at
// https://docs.travis-ci.com/user/environment-variables/#default-environment-variables
type Travis struct{}

func (Travis) Detect() bool {
	// Shippable sets TRAVIS too; it must not be mistaken for Travis.
	return envSet("CI") && envSet("TRAVIS") && !envSet("SHIPPABLE")
}

func (Travis) ServiceName() string { return "Travis" }

func (Travis) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return firstEnv("TRAVIS_PULL_REQUEST_SHA", "TRAVIS_COMMIT")
	case resolver.FieldBuildURL:
		return env("TRAVIS_BUILD_WEB_URL")
	case resolver.FieldBuildCode:
		return env("TRAVIS_JOB_NUMBER")
	case resolver.FieldJobCode:
		return env("TRAVIS_JOB_ID")
	case resolver.FieldPullRequestNumber:
		// "false" when the job is not a pull request.
		if pr := env("TRAVIS_PULL_REQUEST"); pr != "false" {
			return pr
		}
		return ""
	case resolver.FieldSlug:
		return env("TRAVIS_REPO_SLUG")
	case resolver.FieldBranch:
		if env("TRAVIS_BRANCH") != env("TRAVIS_TAG") {
			return firstEnv("TRAVIS_PULL_REQUEST_BRANCH", "TRAVIS_BRANCH")
		}
		return ""
	case resolver.FieldService:
		return "travis"
	}
	return ""
}
