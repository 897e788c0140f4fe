package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
)

var createReportFlags struct {
	commitSHA   string
	slug        string
	gitService  string
	token       string
	reportCode  string
	failOnError bool
}

var createReportCmd = &cobra.Command{
	Use:   "create-report",
	Short: "Create a report on Codecov for a commit",
	RunE: func(cmd *cobra.Command, args []string) error {
		o := &createReportFlags
		run := func() error {
			ref, err := resolveCommitRef(cmd.Context(), o.commitSHA, o.slug, o.gitService, o.token)
			if err != nil {
				return err
			}
			if _, err := ref.client().CreateReport(cmd.Context(), ref.gitService, ref.slug, ref.commitSHA, o.reportCode); err != nil {
				return &api.PhaseError{Phase: "create_report", Err: err}
			}
			logger.Info("report created",
				zap.String("commit_sha", ref.commitSHA),
				zap.String("report_code", o.reportCode))
			return nil
		}
		err := run()
		if err != nil && !o.failOnError {
			logger.Warn("create-report failed, exiting zero without --fail-on-error", zap.Error(err))
			return nil
		}
		return err
	},
}

func init() {
	f := createReportCmd.Flags()
	f.StringVarP(&createReportFlags.commitSHA, "sha", "C", "", "commit SHA, 40 hex digits")
	f.StringVarP(&createReportFlags.slug, "slug", "r", "", "repository slug, owner/repo (envvar: CODECOV_SLUG)")
	f.StringVar(&createReportFlags.gitService, "git-service", "", "hosting service of the repository")
	f.StringVarP(&createReportFlags.token, "token", "t", "", "upload token (envvar: CODECOV_TOKEN)")
	f.StringVar(&createReportFlags.reportCode, "code", "default", "code of the report")
	f.BoolVarP(&createReportFlags.failOnError, "fail-on-error", "Z", false, "exit non-zero on failure")
	rootCmd.AddCommand(createReportCmd)
}
