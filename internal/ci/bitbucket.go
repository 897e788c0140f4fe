package ci

import "github.com/codecov/cli/internal/resolver"

// Bitbucket reads the environment documented at
// https://support.atlassian.com/bitbucket-cloud/docs/variables-and-secrets/
type Bitbucket struct{}

func (Bitbucket) Detect() bool        { return envSet("CI") && envSet("BITBUCKET_BUILD_NUMBER") }
func (Bitbucket) ServiceName() string { return "Bitbucket" }

func (Bitbucket) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		// Older pipeline images expose a truncated 12-char SHA, which
		// the backend cannot use.
		commit := env("BITBUCKET_COMMIT")
		if len(commit) == 12 {
			return ""
		}
		return commit
	case resolver.FieldBuildCode, resolver.FieldJobCode:
		return env("BITBUCKET_BUILD_NUMBER")
	case resolver.FieldPullRequestNumber:
		return env("BITBUCKET_PR_ID")
	case resolver.FieldSlug:
		return env("BITBUCKET_REPO_FULL_NAME")
	case resolver.FieldBranch:
		return env("BITBUCKET_BRANCH")
	case resolver.FieldService:
		return "bitbucket"
	}
	return ""
}
