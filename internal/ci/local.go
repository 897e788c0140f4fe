package ci

import "github.com/codecov/cli/internal/resolver"

// Local is the fallback adapter for runs outside any recognized CI.
// It detects unconditionally and sits last in the registry.
type Local struct{}

func (Local) Detect() bool        { return true }
func (Local) ServiceName() string { return "local" }

func (Local) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("GIT_COMMIT")
	case resolver.FieldBranch:
		return firstEnv("GIT_BRANCH", "BRANCH_NAME")
	case resolver.FieldService:
		return "local"
	}
	return ""
}
