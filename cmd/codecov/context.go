package main

import (
	"context"

	"github.com/codecov/cli/internal/api"
	"github.com/codecov/cli/internal/resolver"
)

// commitRef is the resolved identity most commands operate on.
type commitRef struct {
	commitSHA  string
	slug       string
	gitService string
	branch     string
	token      string
}

// resolveCommitRef fills a commitRef from flags and the fallback
// layers. SHA and slug are mandatory.
func resolveCommitRef(ctx context.Context, sha, slug, gitService, token string) (commitRef, error) {
	res := newResolver(map[resolver.Field]string{
		resolver.FieldCommitSHA:  sha,
		resolver.FieldSlug:       slug,
		resolver.FieldGitService: gitService,
	}, map[resolver.Field]string{
		resolver.FieldSlug: "CODECOV_SLUG",
	})

	var ref commitRef
	var err error
	if ref.commitSHA, err = res.Require(ctx, resolver.FieldCommitSHA); err != nil {
		return ref, err
	}
	if ref.slug, err = res.Require(ctx, resolver.FieldSlug); err != nil {
		return ref, err
	}
	if ref.gitService, err = res.Resolve(ctx, resolver.FieldGitService); err != nil {
		return ref, err
	}
	if ref.gitService == "" {
		ref.gitService = "github"
	}
	if ref.branch, err = res.Resolve(ctx, resolver.FieldBranch); err != nil {
		return ref, err
	}
	ref.token = resolveToken(token)
	return ref, nil
}

// client builds the ingest client for this ref.
func (ref commitRef) client() *api.Client {
	return api.New(api.Options{
		BaseURL:   ingestURL(),
		Token:     ref.token,
		Tokenless: tokenlessFor(ref.token, ref.branch),
		Logger:    logger,
	})
}
