// Package ci reads build context from CI provider environment
// variables. One adapter exists per supported provider plus a local
// fallback; each adapter answers resolver fields from the provider's
// documented variables and returns "" for anything it cannot compute.
// Adapters never mutate process state and never fail: unavailability
// is absence.
package ci

import (
	"errors"
	"fmt"
	"os"

	"github.com/codecov/cli/internal/resolver"
	"github.com/codecov/cli/internal/vcs"
)

// ErrUnknownAdapter is returned by ByName for unrecognized provider
// names.
var ErrUnknownAdapter = errors.New("unknown CI adapter")

// Adapter is the uniform capability set of one CI provider.
type Adapter interface {
	// Detect reports whether this provider's environment is active.
	Detect() bool
	// Get computes a resolver field from the provider's environment,
	// or "" when unavailable.
	Get(field resolver.Field) string
	// ServiceName is the human-readable provider name used for
	// --auto-load-params-from.
	ServiceName() string
}

// Registry holds the adapters in detection order. The local adapter
// is last and detects unconditionally.
type Registry struct {
	adapters []Adapter
}

// NewRegistry builds the registry. The probe is handed to adapters
// that need repository state (merge-commit handling).
func NewRegistry(probe vcs.Probe) *Registry {
	return &Registry{adapters: []Adapter{
		CircleCI{},
		GithubActions{Probe: probe},
		GitlabCI{},
		Bitbucket{},
		Bitrise{},
		Appveyor{},
		Woodpecker{},
		Heroku{},
		DroneCI{},
		Buildkite{},
		AzurePipelines{},
		Jenkins{},
		CirrusCI{},
		Teamcity{},
		Travis{},
		CloudBuild{},
		CodeBuild{},
		Local{},
	}}
}

// AutoDetect returns the first adapter whose environment is active.
// The local adapter detects last and always, so the result is never
// nil.
func (r *Registry) AutoDetect() Adapter {
	for _, a := range r.adapters {
		if a.Detect() {
			return a
		}
	}
	return Local{}
}

// ByName returns the adapter with the given service name.
func (r *Registry) ByName(name string) (Adapter, error) {
	for _, a := range r.adapters {
		if a.ServiceName() == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAdapter, name)
}

// Names lists every adapter's service name in detection order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		names = append(names, a.ServiceName())
	}
	return names
}

func env(key string) string { return os.Getenv(key) }

func envSet(key string) bool { return os.Getenv(key) != "" }

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
