package ci

import (
	"strings"

	"github.com/codecov/cli/internal/resolver"
)

// CircleCI reads the environment documented at
// https://circleci.com/docs/2.0/env-vars/#built-in-environment-variables
type CircleCI struct{}

func (CircleCI) Detect() bool        { return envSet("CI") && envSet("CIRCLECI") }
func (CircleCI) ServiceName() string { return "CircleCI" }

func (CircleCI) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("CIRCLE_SHA1")
	case resolver.FieldBuildURL:
		return env("CIRCLE_BUILD_URL")
	case resolver.FieldBuildCode:
		return env("CIRCLE_BUILD_NUM")
	case resolver.FieldJobCode:
		return env("CIRCLE_NODE_INDEX")
	case resolver.FieldPullRequestNumber:
		return env("CIRCLE_PR_NUMBER")
	case resolver.FieldSlug:
		return circleSlug()
	case resolver.FieldBranch:
		return env("CIRCLE_BRANCH")
	case resolver.FieldService:
		return "circleci"
	}
	return ""
}

func circleSlug() string {
	owner, repo := env("CIRCLE_PROJECT_USERNAME"), env("CIRCLE_PROJECT_REPONAME")
	if owner != "" && repo != "" {
		return owner + "/" + repo
	}
	// git@github.com:owner/repo.git
	if url := env("CIRCLE_REPOSITORY_URL"); url != "" {
		if _, after, found := strings.Cut(url, ":"); found {
			return strings.SplitN(after, ".git", 2)[0]
		}
	}
	return ""
}
