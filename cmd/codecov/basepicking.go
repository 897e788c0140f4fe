package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
	"github.com/codecov/cli/internal/resolver"
)

var basePickingFlags struct {
	baseSHA     string
	pullRequest string
	slug        string
	gitService  string
	token       string
	failOnError bool
}

var basePickingCmd = &cobra.Command{
	Use:   "pr-base-picking",
	Short: "Explicitly set the base commit of a pull request",
	RunE: func(cmd *cobra.Command, args []string) error {
		o := &basePickingFlags
		run := func() error {
			ctx := cmd.Context()
			res := newResolver(map[resolver.Field]string{
				resolver.FieldSlug:              o.slug,
				resolver.FieldGitService:        o.gitService,
				resolver.FieldPullRequestNumber: o.pullRequest,
			}, map[resolver.Field]string{
				resolver.FieldSlug: "CODECOV_SLUG",
			})
			slug, err := res.Require(ctx, resolver.FieldSlug)
			if err != nil {
				return err
			}
			pr, err := res.Require(ctx, resolver.FieldPullRequestNumber)
			if err != nil {
				return err
			}
			gitService, err := res.Resolve(ctx, resolver.FieldGitService)
			if err != nil {
				return err
			}
			if gitService == "" {
				gitService = "github"
			}
			if err := resolver.ValidateSHA(o.baseSHA); err != nil {
				return err
			}

			client := api.New(api.Options{
				BaseURL: apiURL(),
				Token:   resolveToken(o.token),
				Logger:  logger,
			})
			if _, err := client.BasePicking(ctx, gitService, slug, pr, o.baseSHA); err != nil {
				return &api.PhaseError{Phase: "base_picking", Err: err}
			}
			logger.Info("base commit recorded",
				zap.String("pr", pr),
				zap.String("base_sha", o.baseSHA))
			return nil
		}
		err := run()
		if err != nil && !o.failOnError {
			logger.Warn("pr-base-picking failed, exiting zero without --fail-on-error", zap.Error(err))
			return nil
		}
		return err
	},
}

func init() {
	f := basePickingCmd.Flags()
	f.StringVar(&basePickingFlags.baseSHA, "base-sha", "", "SHA to use as the pull request base, 40 hex digits")
	f.StringVarP(&basePickingFlags.pullRequest, "pr", "P", "", "pull request number")
	f.StringVarP(&basePickingFlags.slug, "slug", "r", "", "repository slug, owner/repo (envvar: CODECOV_SLUG)")
	f.StringVar(&basePickingFlags.gitService, "service", "", "hosting service of the repository")
	f.StringVarP(&basePickingFlags.token, "token", "t", "", "upload token (envvar: CODECOV_TOKEN)")
	f.BoolVarP(&basePickingFlags.failOnError, "fail-on-error", "Z", false, "exit non-zero on failure")
	_ = basePickingCmd.MarkFlagRequired("base-sha")
	rootCmd.AddCommand(basePickingCmd)
}
