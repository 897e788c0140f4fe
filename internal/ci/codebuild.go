package ci

import (
	"regexp"
	"strings"

	"github.com/codecov/cli/internal/resolver"
)

var codebuildHostRe = regexp.MustCompile(`^.*(github\.com|gitlab\.com|bitbucket\.com)/`)

// CodeBuild reads the environment documented at
// https://docs.aws.amazon.com/codebuild/latest/userguide/build-env-ref-env-vars.html
type CodeBuild struct{}

func (CodeBuild) Detect() bool        { return envSet("CODEBUILD_CI") }
func (CodeBuild) ServiceName() string { return "AWSCodeBuild" }

func (CodeBuild) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("CODEBUILD_RESOLVED_SOURCE_VERSION")
	case resolver.FieldBuildCode, resolver.FieldJobCode:
		return env("CODEBUILD_BUILD_ID")
	case resolver.FieldPullRequestNumber:
		if pr := env("CODEBUILD_SOURCE_VERSION"); strings.HasPrefix(pr, "pr/") {
			return strings.TrimPrefix(pr, "pr/")
		}
		return ""
	case resolver.FieldSlug:
		if repo := env("CODEBUILD_SOURCE_REPO_URL"); repo != "" {
			slug := codebuildHostRe.ReplaceAllString(repo, "")
			return strings.TrimSuffix(slug, ".git")
		}
		return ""
	case resolver.FieldBranch:
		return strings.TrimPrefix(env("CODEBUILD_WEBHOOK_HEAD_REF"), "refs/heads/")
	case resolver.FieldService:
		return "AWS CodeBuild"
	}
	return ""
}
