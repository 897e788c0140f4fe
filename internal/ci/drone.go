package ci

import "github.com/codecov/cli/internal/resolver"

// DroneCI reads the environment documented at
// https://docs.drone.io/pipeline/environment/reference/
type DroneCI struct{}

func (DroneCI) Detect() bool        { return envSet("DRONE") }
func (DroneCI) ServiceName() string { return "DroneCI" }

func (DroneCI) Get(field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return env("DRONE_COMMIT_SHA")
	case resolver.FieldBuildURL:
		return env("DRONE_BUILD_LINK")
	case resolver.FieldBuildCode:
		return env("DRONE_BUILD_NUMBER")
	case resolver.FieldPullRequestNumber:
		return env("DRONE_PULL_REQUEST")
	case resolver.FieldSlug:
		return env("DRONE_REPO")
	case resolver.FieldBranch:
		return env("DRONE_BRANCH")
	case resolver.FieldService:
		return "droneci"
	}
	return ""
}
