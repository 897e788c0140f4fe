package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
	"github.com/codecov/cli/internal/resolver"
)

type createCommitOpts struct {
	commitSHA   string
	parentSHA   string
	branch      string
	pullRequest string
	slug        string
	gitService  string
	token       string
	failOnError bool
}

var createCommitFlags createCommitOpts

var createCommitCmd = &cobra.Command{
	Use:   "create-commit",
	Short: "Register a commit with Codecov",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runCreateCommit(cmd.Context(), &createCommitFlags)
		if err != nil && !createCommitFlags.failOnError {
			logger.Warn("create-commit failed, exiting zero without --fail-on-error", zap.Error(err))
			return nil
		}
		return err
	},
}

func init() {
	f := createCommitCmd.Flags()
	f.StringVarP(&createCommitFlags.commitSHA, "sha", "C", "", "commit SHA, 40 hex digits")
	f.StringVar(&createCommitFlags.parentSHA, "parent-sha", "", "SHA of the parent commit, when known")
	f.StringVarP(&createCommitFlags.branch, "branch", "B", "", "branch to which the commit belongs")
	f.StringVarP(&createCommitFlags.pullRequest, "pr", "P", "", "pull request number")
	f.StringVarP(&createCommitFlags.slug, "slug", "r", "", "repository slug, owner/repo (envvar: CODECOV_SLUG)")
	f.StringVar(&createCommitFlags.gitService, "git-service", "", "hosting service of the repository")
	f.StringVarP(&createCommitFlags.token, "token", "t", "", "upload token (envvar: CODECOV_TOKEN)")
	f.BoolVarP(&createCommitFlags.failOnError, "fail-on-error", "Z", false, "exit non-zero on failure")
	rootCmd.AddCommand(createCommitCmd)
}

func runCreateCommit(ctx context.Context, o *createCommitOpts) error {
	res := newResolver(map[resolver.Field]string{
		resolver.FieldCommitSHA:         o.commitSHA,
		resolver.FieldParentSHA:         o.parentSHA,
		resolver.FieldBranch:            o.branch,
		resolver.FieldPullRequestNumber: o.pullRequest,
		resolver.FieldSlug:              o.slug,
		resolver.FieldGitService:        o.gitService,
	}, map[resolver.Field]string{
		resolver.FieldSlug: "CODECOV_SLUG",
	})

	commitSHA, err := res.Require(ctx, resolver.FieldCommitSHA)
	if err != nil {
		return err
	}
	slug, err := res.Require(ctx, resolver.FieldSlug)
	if err != nil {
		return err
	}
	branch, err := res.Resolve(ctx, resolver.FieldBranch)
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
	parentSHA, err := res.Resolve(ctx, resolver.FieldParentSHA)
	if err != nil {
		return err
	}
	pullRequest, err := res.Resolve(ctx, resolver.FieldPullRequestNumber)
	if err != nil {
		return err
	}

	token := resolveToken(o.token)
	client := api.New(api.Options{
		BaseURL:   ingestURL(),
		Token:     token,
		Tokenless: tokenlessFor(token, branch),
		Logger:    logger,
	})
	if _, err := client.CreateCommit(ctx, gitService, slug, api.CommitRequest{
		CommitSHA:         commitSHA,
		ParentSHA:         parentSHA,
		PullRequestNumber: pullRequest,
		Branch:            branch,
	}); err != nil {
		return &api.PhaseError{Phase: "create_commit", Err: err}
	}
	logger.Info("commit created", zap.String("commit_sha", commitSHA), zap.String("slug", slug))
	return nil
}
