package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
	"github.com/codecov/cli/internal/resolver"
)

var transplantFlags struct {
	commitSHA   string
	fromSHA     string
	slug        string
	gitService  string
	token       string
	failOnError bool
}

var transplantCmd = &cobra.Command{
	Use:   "transplant-report",
	Short: "Copy the reports of one commit onto another",
	RunE: func(cmd *cobra.Command, args []string) error {
		o := &transplantFlags
		run := func() error {
			ref, err := resolveCommitRef(cmd.Context(), o.commitSHA, o.slug, o.gitService, o.token)
			if err != nil {
				return err
			}
			if err := resolver.ValidateSHA(o.fromSHA); err != nil {
				return err
			}
			if _, err := ref.client().TransplantReport(cmd.Context(), ref.gitService, ref.slug, ref.commitSHA, o.fromSHA); err != nil {
				return &api.PhaseError{Phase: "transplant_report", Err: err}
			}
			logger.Info("report transplanted",
				zap.String("from_sha", o.fromSHA),
				zap.String("commit_sha", ref.commitSHA))
			return nil
		}
		err := run()
		if err != nil && !o.failOnError {
			logger.Warn("transplant-report failed, exiting zero without --fail-on-error", zap.Error(err))
			return nil
		}
		return err
	},
}

func init() {
	f := transplantCmd.Flags()
	f.StringVarP(&transplantFlags.commitSHA, "sha", "C", "", "commit SHA receiving the reports")
	f.StringVar(&transplantFlags.fromSHA, "from-sha", "", "commit SHA whose reports are copied")
	f.StringVarP(&transplantFlags.slug, "slug", "r", "", "repository slug, owner/repo (envvar: CODECOV_SLUG)")
	f.StringVar(&transplantFlags.gitService, "git-service", "", "hosting service of the repository")
	f.StringVarP(&transplantFlags.token, "token", "t", "", "upload token (envvar: CODECOV_TOKEN)")
	f.BoolVarP(&transplantFlags.failOnError, "fail-on-error", "Z", false, "exit non-zero on failure")
	_ = transplantCmd.MarkFlagRequired("from-sha")
	rootCmd.AddCommand(transplantCmd)
}
