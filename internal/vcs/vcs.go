// Package vcs discovers repository state from the local working tree.
// It shells out to the git CLI and degrades gracefully when git is
// unavailable: the fallback probe treats the current working directory
// as the network root and returns empty listings.
package vcs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/codecov/cli/internal/resolver"
)

// Probe exposes the source-control lookups the CLI depends on.
type Probe interface {
	// NetworkRoot returns the working tree root, or "" when unknown.
	NetworkRoot(ctx context.Context) string

	// HeadCommit returns the SHA the backend should attribute this
	// run to. See GitProbe.HeadCommit for the merge-commit rule.
	HeadCommit(ctx context.Context) string

	// HeadParents returns the parent SHAs of HEAD.
	HeadParents(ctx context.Context) []string

	// ListTracked enumerates files tracked by the working tree under
	// root, with git's filename quoting undone.
	ListTracked(ctx context.Context, root string) ([]string, error)

	// RecentSHAs returns up to n SHAs from the current history,
	// newest first. Used for candidate base-commit selection.
	RecentSHAs(ctx context.Context, n int) []string

	// Get resolves a context field from repository state. Only
	// commit_sha, branch, slug and git_service are derivable; other
	// fields return "".
	Get(ctx context.Context, field resolver.Field) string
}

// NewProbe returns a GitProbe when git is usable inside a repository
// and the degraded NoGitProbe otherwise.
func NewProbe(ctx context.Context) Probe {
	g, err := NewGitProbe(ctx)
	if err != nil {
		return NoGitProbe{}
	}
	if g.NetworkRoot(ctx) == "" {
		return NoGitProbe{}
	}
	return g
}

// GitProbe implements Probe using the git CLI.
type GitProbe struct {
	gitPath string
}

// NewGitProbe creates a GitProbe. It verifies that git is available.
func NewGitProbe(ctx context.Context) (*GitProbe, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, gitPath, "version")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git command failed: %w", err)
	}
	return &GitProbe{gitPath: gitPath}, nil
}

func (g *GitProbe) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.gitPath, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// NetworkRoot returns the top level of the working tree.
func (g *GitProbe) NetworkRoot(ctx context.Context) string {
	out, err := g.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// HeadCommit returns the SHA of the latest commit that is not a merge
// commit. When HEAD is a merge commit (exactly two parents) the second
// parent is returned: that is the branch commit the backend knows
// about.
func (g *GitProbe) HeadCommit(ctx context.Context) string {
	parents := g.HeadParents(ctx)
	if len(parents) == 2 {
		return parents[1]
	}
	out, err := g.run(ctx, "log", "-1", "--format=%H")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// HeadParents returns the parent SHAs of HEAD.
func (g *GitProbe) HeadParents(ctx context.Context) []string {
	out, err := g.run(ctx, "rev-parse", "HEAD^@")
	if err != nil || strings.TrimSpace(out) == "" {
		return nil
	}
	return strings.Fields(out)
}

// RecentSHAs returns up to n SHAs from the current branch history.
func (g *GitProbe) RecentSHAs(ctx context.Context, n int) []string {
	out, err := g.run(ctx, "log", "--format=%H", "-n", strconv.Itoa(n))
	if err != nil || strings.TrimSpace(out) == "" {
		return nil
	}
	return strings.Fields(out)
}

// ListTracked enumerates the files git tracks under root. Git quotes
// filenames containing control or non-ASCII characters; those entries
// are rehydrated to their literal form.
func (g *GitProbe) ListTracked(ctx context.Context, root string) ([]string, error) {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", root, "ls-files")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed in %s: %w", root, err)
	}
	var files []string
	for line := range strings.SplitSeq(string(out), "\n") {
		if line == "" {
			continue
		}
		files = append(files, UnquoteFilename(line))
	}
	return files, nil
}

func (g *GitProbe) remoteURL(ctx context.Context) string {
	out, err := g.run(ctx, "remote")
	if err != nil || strings.TrimSpace(out) == "" {
		return ""
	}
	remotes := strings.Fields(out)
	// Prefer origin when it exists, else the first remote listed.
	name := remotes[0]
	for _, r := range remotes {
		if r == "origin" {
			name = r
			break
		}
	}
	url, err := g.run(ctx, "ls-remote", "--get-url", name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(url)
}

// Get resolves a context field from repository state.
func (g *GitProbe) Get(ctx context.Context, field resolver.Field) string {
	switch field {
	case resolver.FieldCommitSHA:
		return g.HeadCommit(ctx)
	case resolver.FieldBranch:
		out, err := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
		if err != nil {
			return ""
		}
		branch := strings.TrimSpace(out)
		// "HEAD" means detached HEAD state, which has no branch.
		if branch == "HEAD" {
			return ""
		}
		return branch
	case resolver.FieldSlug:
		if url := g.remoteURL(ctx); url != "" {
			if slug, err := ParseSlug(url); err == nil {
				return slug
			}
		}
	case resolver.FieldGitService:
		if url := g.remoteURL(ctx); url != "" {
			return ParseGitService(url)
		}
	}
	return ""
}

// NoGitProbe is the degraded probe used outside a repository.
type NoGitProbe struct{}

// NetworkRoot returns the current working directory.
func (NoGitProbe) NetworkRoot(ctx context.Context) string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

func (NoGitProbe) HeadCommit(ctx context.Context) string          { return "" }
func (NoGitProbe) HeadParents(ctx context.Context) []string       { return nil }
func (NoGitProbe) RecentSHAs(ctx context.Context, n int) []string { return nil }

func (NoGitProbe) ListTracked(ctx context.Context, root string) ([]string, error) {
	return nil, nil
}

func (NoGitProbe) Get(ctx context.Context, field resolver.Field) string { return "" }
