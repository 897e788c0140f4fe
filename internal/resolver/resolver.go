// Package resolver derives run context (commit, repository, build
// identity) from layered sources. For each field the first source
// with a value wins: explicit CLI flag, the flag's bound environment
// variable, the active CI adapter, the VCS probe, then the config
// file. A required field no layer can produce is an error.
package resolver

import (
	"context"
	"fmt"
	"os"

	"github.com/codecov/cli/internal/api"
	"go.uber.org/zap"
)

// AdapterSource answers fields from CI provider environment variables.
type AdapterSource interface {
	Get(field Field) string
}

// ProbeSource answers fields from local source-control state.
type ProbeSource interface {
	Get(ctx context.Context, field Field) string
}

// ConfigSource answers fields from the loaded YAML config.
type ConfigSource interface {
	Get(field Field) string
}

// vcsFields are the only fields the VCS probe layer may answer.
var vcsFields = map[Field]bool{
	FieldCommitSHA:  true,
	FieldBranch:     true,
	FieldSlug:       true,
	FieldGitService: true,
}

// Resolver walks the fallback layers for one run. Construct it once
// per invocation; it is immutable after that.
type Resolver struct {
	// Flags holds explicit CLI arguments, keyed by field. Empty
	// values are treated as unsupplied.
	Flags map[Field]string
	// EnvBindings maps a field to the environment variable its CLI
	// option declares (e.g. slug -> CODECOV_SLUG).
	EnvBindings map[Field]string
	Adapter     AdapterSource
	Probe       ProbeSource
	Config      ConfigSource
	Logger      *zap.Logger
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Resolve returns the value of field, or "" when no layer produced
// one. Values for commit_sha and slug are validated; invalid values
// fail rather than falling through to a later layer, so a typo is
// surfaced instead of silently replaced.
func (r *Resolver) Resolve(ctx context.Context, field Field) (string, error) {
	value, layer := r.lookup(ctx, field)
	if value == "" {
		return "", nil
	}
	if err := Validate(field, value); err != nil {
		return "", fmt.Errorf("%s (from %s): %w", field, layer, err)
	}
	r.logger().Debug("resolved field",
		zap.String("field", string(field)),
		zap.String("layer", layer))
	return value, nil
}

// Require is Resolve for fields the command cannot run without.
func (r *Resolver) Require(ctx context.Context, field Field) (string, error) {
	value, err := r.Resolve(ctx, field)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", fmt.Errorf("%w: %s could not be determined from arguments, environment, CI, VCS or config", api.ErrMissingRequired, field)
	}
	return value, nil
}

func (r *Resolver) lookup(ctx context.Context, field Field) (value, layer string) {
	if v := r.Flags[field]; v != "" {
		return v, "argument"
	}
	if envVar := r.EnvBindings[field]; envVar != "" {
		if v := os.Getenv(envVar); v != "" {
			return v, "env " + envVar
		}
	}
	if r.Adapter != nil {
		if v := r.Adapter.Get(field); v != "" {
			return v, "ci adapter"
		}
	}
	if r.Probe != nil && vcsFields[field] {
		if v := r.Probe.Get(ctx, field); v != "" {
			return v, "vcs"
		}
	}
	if r.Config != nil {
		if v := r.Config.Get(field); v != "" {
			return v, "config"
		}
	}
	return "", ""
}
