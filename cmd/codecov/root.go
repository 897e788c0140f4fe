package main

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/codecov/cli/internal/api"
	"github.com/codecov/cli/internal/ci"
	"github.com/codecov/cli/internal/resolver"
	"github.com/codecov/cli/internal/vcs"
)

// Populated by PersistentPreRunE, shared by every command.
var (
	logger  *zap.Logger
	probe   vcs.Probe
	adapter ci.Adapter
	cfg     *resolver.Config
)

var (
	verbose            bool
	enterpriseURL      string
	autoLoadParamsFrom string
	codecovYmlPath     string
)

var rootCmd = &cobra.Command{
	Use:           "codecov",
	Short:         "Upload coverage reports to Codecov",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = buildLogger(verbose)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		probe = vcs.NewProbe(ctx)

		registry := ci.NewRegistry(probe)
		if autoLoadParamsFrom != "" {
			adapter, err = registry.ByName(autoLoadParamsFrom)
			if err != nil {
				return err
			}
		} else {
			adapter = registry.AutoDetect()
		}
		logger.Debug("ci provider", zap.String("provider", adapter.ServiceName()))

		path := codecovYmlPath
		if path == "" {
			path = resolver.DiscoverConfig(probe.NetworkRoot(ctx))
		}
		if path != "" {
			cfg, err = resolver.LoadConfig(path, logger)
			if err != nil {
				logger.Warn("unable to load config file", zap.Error(err))
				cfg = nil
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&enterpriseURL, "enterprise-url", "u", "", "self-hosted Codecov instance URL")
	rootCmd.PersistentFlags().StringVar(&autoLoadParamsFrom, "auto-load-params-from", "", "force a specific CI provider instead of auto-detection")
	rootCmd.PersistentFlags().StringVar(&codecovYmlPath, "codecov-yml-path", "", "path to the codecov YAML config file")
}

// buildLogger mirrors production zap config with a per-run id so log
// lines from one invocation can be correlated.
func buildLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("run_id", uuid.NewString())), nil
}

// newResolver assembles the fallback chain for one command. flags
// carry the command's explicit arguments; bindings the per-flag env
// variables.
func newResolver(flags, bindings map[resolver.Field]string) *resolver.Resolver {
	return &resolver.Resolver{
		Flags:       flags,
		EnvBindings: bindings,
		Adapter:     adapter,
		Probe:       probe,
		Config:      cfg,
		Logger:      logger,
	}
}

// ingestURL is the upload host, honoring --enterprise-url.
func ingestURL() string {
	if enterpriseURL != "" {
		return enterpriseURL
	}
	return api.DefaultIngestURL
}

// apiURL hosts base picking and label analysis.
func apiURL() string {
	if enterpriseURL != "" {
		return enterpriseURL
	}
	return api.DefaultAPIURL
}

// legacyURL hosts the v4 upload endpoint.
func legacyURL() string {
	if enterpriseURL != "" {
		return enterpriseURL
	}
	return api.DefaultLegacyURL
}

// resolveToken walks the credential fallbacks: flag, CODECOV_TOKEN,
// then the config file.
func resolveToken(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CODECOV_TOKEN"); v != "" {
		return v
	}
	return cfg.Token()
}

// tokenlessFor derives the tokenless identifier for public-repo fork
// uploads: the fork branch in owner:branch form qualifies, anything
// else does not.
func tokenlessFor(token, branch string) string {
	if token != "" {
		return ""
	}
	if strings.Contains(branch, ":") {
		return branch
	}
	return ""
}
