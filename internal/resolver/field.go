package resolver

// Field identifies a piece of run context that can be resolved from
// multiple sources (CLI flag, environment, CI adapter, VCS, config).
type Field string

const (
	FieldCommitSHA         Field = "commit_sha"
	FieldParentSHA         Field = "parent_sha"
	FieldBuildURL          Field = "build_url"
	FieldBuildCode         Field = "build_code"
	FieldJobCode           Field = "job_code"
	FieldPullRequestNumber Field = "pull_request_number"
	FieldSlug              Field = "slug"
	FieldBranch            Field = "branch"
	FieldService           Field = "service"
	FieldGitService        Field = "git_service"
)

// Fields lists every resolvable field.
var Fields = []Field{
	FieldCommitSHA,
	FieldParentSHA,
	FieldBuildURL,
	FieldBuildCode,
	FieldJobCode,
	FieldPullRequestNumber,
	FieldSlug,
	FieldBranch,
	FieldService,
	FieldGitService,
}
