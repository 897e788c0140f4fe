package ci

import "github.com/codecov/cli/internal/resolver"

// Heroku reads the environment documented at
// https://devcenter.heroku.com/articles/heroku-ci#immutable-environment-variables
type Heroku struct{}

func (Heroku) Detect() bool        { return envSet("CI") && envSet("HEROKU_TEST_RUN_BRANCH") }
func (Heroku) ServiceName() string { return "Heroku" }

func (Heroku) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("HEROKU_TEST_RUN_COMMIT_VERSION")
	case resolver.FieldBuildCode:
		return env("HEROKU_TEST_RUN_ID")
	case resolver.FieldBranch:
		return env("HEROKU_TEST_RUN_BRANCH")
	case resolver.FieldService:
		return "heroku"
	}
	return ""
}
