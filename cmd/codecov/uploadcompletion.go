package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
)

var uploadCompletionFlags struct {
	commitSHA   string
	slug        string
	gitService  string
	token       string
	failOnError bool
}

var uploadCompletionCmd = &cobra.Command{
	Use:   "upload-completion",
	Short: "Tell Codecov no further uploads will arrive for a commit",
	RunE: func(cmd *cobra.Command, args []string) error {
		o := &uploadCompletionFlags
		run := func() error {
			ref, err := resolveCommitRef(cmd.Context(), o.commitSHA, o.slug, o.gitService, o.token)
			if err != nil {
				return err
			}
			res, err := ref.client().UploadComplete(cmd.Context(), ref.gitService, ref.slug, ref.commitSHA)
			if err != nil {
				return &api.PhaseError{Phase: "upload_complete", Err: err}
			}
			logger.Info("notifications triggered",
				zap.String("commit_sha", ref.commitSHA),
				zap.Int("status", res.StatusCode))
			return nil
		}
		err := run()
		if err != nil && !o.failOnError {
			logger.Warn("upload-completion failed, exiting zero without --fail-on-error", zap.Error(err))
			return nil
		}
		return err
	},
}

func init() {
	f := uploadCompletionCmd.Flags()
	f.StringVarP(&uploadCompletionFlags.commitSHA, "sha", "C", "", "commit SHA, 40 hex digits")
	f.StringVarP(&uploadCompletionFlags.slug, "slug", "r", "", "repository slug, owner/repo (envvar: CODECOV_SLUG)")
	f.StringVar(&uploadCompletionFlags.gitService, "git-service", "", "hosting service of the repository")
	f.StringVarP(&uploadCompletionFlags.token, "token", "t", "", "upload token (envvar: CODECOV_TOKEN)")
	f.BoolVarP(&uploadCompletionFlags.failOnError, "fail-on-error", "Z", false, "exit non-zero on failure")
	rootCmd.AddCommand(uploadCompletionCmd)
}
