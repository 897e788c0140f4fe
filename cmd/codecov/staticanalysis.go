package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
	"github.com/codecov/cli/internal/resolver"
	"github.com/codecov/cli/internal/staticanalysis"
)

var staticAnalysisFlags struct {
	commitSHA   string
	token       string
	folder      string
	workers     int
	failOnError bool
}

var staticAnalysisCmd = &cobra.Command{
	Use:   "static-analysis",
	Short: "Fingerprint tracked source files and sync them with Codecov",
	RunE: func(cmd *cobra.Command, args []string) error {
		o := &staticAnalysisFlags
		run := func() error {
			ctx := cmd.Context()
			res := newResolver(map[resolver.Field]string{
				resolver.FieldCommitSHA: o.commitSHA,
			}, nil)
			commitSHA, err := res.Require(ctx, resolver.FieldCommitSHA)
			if err != nil {
				return err
			}
			token := resolveToken(o.token)

			root := o.folder
			if root == "" {
				root = probe.NetworkRoot(ctx)
			}
			paths, err := probe.ListTracked(ctx, root)
			if err != nil {
				return err
			}

			analyzer := &staticanalysis.Analyzer{
				Client: api.New(api.Options{
					BaseURL: apiURL(),
					Logger:  logger,
				}),
				Token:   token,
				Workers: o.workers,
				Logger:  logger,
			}
			return analyzer.Run(ctx, commitSHA, paths)
		}
		err := run()
		if err != nil && !o.failOnError {
			logger.Warn("static-analysis failed, exiting zero without --fail-on-error", zap.Error(err))
			return nil
		}
		return err
	},
}

func init() {
	f := staticAnalysisCmd.Flags()
	f.StringVarP(&staticAnalysisFlags.commitSHA, "commit-sha", "C", "", "commit SHA being analyzed")
	f.StringVarP(&staticAnalysisFlags.token, "token", "t", "", "repository token (envvar: CODECOV_TOKEN)")
	f.StringVar(&staticAnalysisFlags.folder, "folder", "", "folder to analyze, defaults to the repository root")
	f.IntVar(&staticAnalysisFlags.workers, "number-processes", 0, "size of the fingerprinting worker pool")
	f.BoolVarP(&staticAnalysisFlags.failOnError, "fail-on-error", "Z", false, "exit non-zero on failure")
	rootCmd.AddCommand(staticAnalysisCmd)
}
