// Package upload drives the end-to-end report submission flow:
// collect artifacts, tracked files and path fixes in parallel,
// register the commit and report, build the payload, reserve a
// storage slot, store the bytes and signal completion.
package upload

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codecov/cli/internal/api"
	"github.com/codecov/cli/internal/finder"
	"github.com/codecov/cli/internal/fixes"
	"github.com/codecov/cli/internal/payload"
	"github.com/codecov/cli/internal/vcs"
)

// Params carry everything a single upload needs. Resolution of the
// contextual fields happens before this package is reached.
type Params struct {
	CommitSHA  string
	ParentSHA  string
	Slug       string
	GitService string
	Branch     string
	PullID     string
	ReportCode string

	BuildURL  string
	BuildCode string
	JobCode   string
	Name      string
	CIService string
	Flags     []string
	Env       []string

	ReportType       finder.ReportType
	SearchRoot       string
	ExplicitFiles    []string
	ExcludeDirs      []string
	DisableSearch    bool
	DisableFileFixes bool
	Network          NetworkOptions

	DryRun               bool
	FailOnError          bool
	HandleNoReportsFound bool
	UseLegacyUploader    bool
}

// Uploader binds the collaborators of the flow together. LegacyClient
// targets the v4 host and is only consulted when a run asks for the
// legacy uploader.
type Uploader struct {
	Client       *api.Client
	LegacyClient *api.Client
	Probe        vcs.Probe
	Logger       *zap.Logger
}

// collected is the output of the parallel gathering phase.
type collected struct {
	artifacts []finder.Artifact
	network   []string
	fixes     []fixes.Fix
}

// Run executes the full flow and returns the backend result of the
// final call made. With DryRun set, nothing leaves the machine.
func (u *Uploader) Run(ctx context.Context, p Params) (api.Result, error) {
	col, err := u.collect(ctx, p)
	if err != nil {
		return api.Result{}, &api.PhaseError{Phase: "collect", Err: err}
	}

	if len(col.artifacts) == 0 {
		if !p.HandleNoReportsFound {
			return api.Result{}, &api.PhaseError{
				Phase: "collect",
				Err:   fmt.Errorf("%w: no report files matched", api.ErrNoArtifacts),
			}
		}
		u.Logger.Info("No coverage reports found. Triggering notifications without uploading.")
		if p.DryRun {
			return api.Result{StatusCode: 200}, nil
		}
		return u.complete(ctx, p)
	}
	u.Logger.Info("collected report files", zap.Int("count", len(col.artifacts)))
	for _, a := range col.artifacts {
		u.Logger.Debug("report file", zap.String("path", a.DisplayPath()))
	}

	if err := u.register(ctx, p); err != nil {
		return api.Result{}, err
	}

	if p.UseLegacyUploader {
		return u.runLegacy(ctx, p, col)
	}

	body, err := payload.BuildJSON(col.artifacts, col.network, col.fixes)
	if err != nil {
		return api.Result{}, &api.PhaseError{Phase: "build_payload", Err: err}
	}
	if p.DryRun {
		u.Logger.Info("dry run, skipping upload", zap.Int("payload_bytes", len(body)))
		fmt.Println(string(body))
		return api.Result{StatusCode: 200}, nil
	}

	req := api.UploadRequest{
		CIURL:     p.BuildURL,
		Flags:     p.Flags,
		Env:       envMap(p.Env),
		Name:      p.Name,
		JobCode:   p.JobCode,
		CIService: p.CIService,
	}
	ticket, res, err := u.Client.RequestUpload(ctx, p.GitService, p.Slug, p.CommitSHA, p.ReportCode, req)
	if err != nil {
		return res, &api.PhaseError{Phase: "request_upload", Err: err}
	}
	u.Logger.Info("upload slot reserved", zap.String("external_id", ticket.ExternalID))

	putRes, err := u.Client.PutBlob(ctx, ticket.PutURL, body)
	if err != nil {
		return putRes, &api.PhaseError{Phase: "put_payload", Err: err}
	}
	u.Logger.Info("report uploaded", zap.Int("status", putRes.StatusCode))
	return u.complete(ctx, p)
}

// register runs the commit and report registrations preceding the
// upload. In a dry run they are logged but never sent. A commit
// registration failure aborts a coverage run; other report types
// carry on without one when failures are tolerated.
func (u *Uploader) register(ctx context.Context, p Params) error {
	if p.DryRun {
		u.Logger.Info("dry run, skipping commit and report registration",
			zap.String("commit_sha", p.CommitSHA),
			zap.String("report_code", p.ReportCode))
		return nil
	}
	if _, err := u.Client.CreateCommit(ctx, p.GitService, p.Slug, api.CommitRequest{
		CommitSHA:         p.CommitSHA,
		ParentSHA:         p.ParentSHA,
		PullRequestNumber: p.PullID,
		Branch:            p.Branch,
	}); err != nil {
		if p.FailOnError || p.ReportType == finder.ReportTypeCoverage {
			return &api.PhaseError{Phase: "create_commit", Err: err}
		}
		u.Logger.Warn("commit registration failed, continuing without it", zap.Error(err))
		return nil
	}
	u.Logger.Info("commit registered", zap.String("commit_sha", p.CommitSHA))

	if p.ReportType != finder.ReportTypeCoverage {
		return nil
	}
	if _, err := u.Client.CreateReport(ctx, p.GitService, p.Slug, p.CommitSHA, p.ReportCode); err != nil {
		return &api.PhaseError{Phase: "create_report", Err: err}
	}
	u.Logger.Info("report registered", zap.String("report_code", p.ReportCode))
	return nil
}

// complete signals that no further uploads will arrive for this
// commit and report, which starts notification.
func (u *Uploader) complete(ctx context.Context, p Params) (api.Result, error) {
	res, err := u.Client.UploadComplete(ctx, p.GitService, p.Slug, p.CommitSHA)
	if err != nil {
		return res, &api.PhaseError{Phase: "upload_complete", Err: err}
	}
	return res, nil
}

// runLegacy posts through the v4 endpoint: one call to obtain the
// result and storage URLs, then the raw PUT of the text payload.
func (u *Uploader) runLegacy(ctx context.Context, p Params, col collected) (api.Result, error) {
	body, err := payload.BuildLegacy(col.artifacts, col.network, p.Env)
	if err != nil {
		return api.Result{}, &api.PhaseError{Phase: "build_payload", Err: err}
	}
	if p.DryRun {
		u.Logger.Info("dry run, skipping legacy upload", zap.Int("payload_bytes", len(body)))
		fmt.Println(string(body))
		return api.Result{StatusCode: 200}, nil
	}

	client := u.LegacyClient
	if client == nil {
		client = u.Client
	}
	query := map[string]string{
		"commit":    p.CommitSHA,
		"slug":      p.Slug,
		"branch":    p.Branch,
		"pr":        p.PullID,
		"build":     p.BuildCode,
		"build_url": p.BuildURL,
		"job":       p.JobCode,
		"name":      p.Name,
		"service":   p.CIService,
		"package":   "codecov-cli",
	}
	resultURL, putURL, res, err := client.LegacyUpload(ctx, query)
	if err != nil {
		return res, &api.PhaseError{Phase: "request_upload", Err: err}
	}
	u.Logger.Info("report will be available at", zap.String("url", resultURL))

	putRes, err := client.PutBlob(ctx, putURL, body)
	if err != nil {
		return putRes, &api.PhaseError{Phase: "put_payload", Err: err}
	}
	return u.complete(ctx, p)
}

// collect runs artifact discovery and the tracked file listing
// concurrently. Path fixes depend on the tracked list, so they run on
// the same goroutine after it.
func (u *Uploader) collect(ctx context.Context, p Params) (collected, error) {
	var col collected
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		f := &finder.Finder{
			SearchRoot:    p.SearchRoot,
			ReportType:    p.ReportType,
			ExplicitFiles: p.ExplicitFiles,
			ExcludeDirs:   p.ExcludeDirs,
			DisableSearch: p.DisableSearch,
			Logger:        u.Logger,
		}
		artifacts, err := f.Find()
		if err != nil {
			return err
		}
		col.artifacts = artifacts
		return nil
	})

	g.Go(func() error {
		root := p.Network.RootFolder
		if root == "" {
			root = u.Probe.NetworkRoot(ctx)
		}
		tracked, err := u.Probe.ListTracked(ctx, root)
		if err != nil {
			u.Logger.Warn("unable to list tracked files", zap.Error(err))
			tracked = nil
		}
		kept := filterNetwork(tracked, p.Network)
		col.network = prefixNetwork(kept, p.Network.Prefix)
		if !p.DisableFileFixes && p.ReportType == finder.ReportTypeCoverage {
			col.fixes = fixes.Scan(root, kept, u.Logger)
			for i := range col.fixes {
				col.fixes[i].Path = p.Network.Prefix + col.fixes[i].Path
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return collected{}, err
	}
	return col, nil
}

func envMap(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	m := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, _ := strings.Cut(kv, "=")
		m[k] = v
	}
	return m
}
