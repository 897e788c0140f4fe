// Package staticanalysis fingerprints tracked source files and
// synchronizes them with the backend analysis store. Files whose
// hashes the backend already knows are skipped; the rest are uploaded
// concurrently through pre-signed URLs.
package staticanalysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/codecov/cli/internal/api"
)

// maxConcurrentPuts bounds simultaneous pre-signed uploads.
const maxConcurrentPuts = 5

// fileRecord is one entry of the analysis manifest.
type fileRecord struct {
	Filepath string `json:"filepath"`
	FileHash string `json:"file_hash"`
}

type analysisRequest struct {
	Commit    string       `json:"commit"`
	Filepaths []fileRecord `json:"filepaths"`
}

// analysisAnswer lists, per file, whether the backend already holds
// the fingerprint and where to put the content when it does not.
type analysisAnswer struct {
	ExternalID string `json:"external_id"`
	Filepaths  []struct {
		State    string `json:"state"`
		Filepath string `json:"filepath"`
		PutURL   string `json:"raw_upload_location"`
	} `json:"filepaths"`
}

// Analyzer runs the fingerprint and upload passes.
type Analyzer struct {
	Client *api.Client
	Token  string
	// Workers sizes the hashing pool. Zero means one per file up to a
	// small cap.
	Workers int
	Logger  *zap.Logger
}

// auth is the static analysis credential scheme, distinct from the
// upload endpoints.
func (a *Analyzer) auth() api.RequestModifier {
	return api.SetHeader("Authorization", "Repotoken "+a.Token)
}

// Run fingerprints paths, registers the manifest for commitSHA and
// uploads whatever the backend does not hold yet.
func (a *Analyzer) Run(ctx context.Context, commitSHA string, paths []string) error {
	records, err := a.fingerprint(ctx, paths)
	if err != nil {
		return fmt.Errorf("fingerprinting: %w", err)
	}
	if len(records) == 0 {
		a.Logger.Info("no files to analyze")
		return nil
	}

	var answer analysisAnswer
	_, err = a.Client.PostJSON(ctx, "/staticanalysis/analyses",
		analysisRequest{Commit: commitSHA, Filepaths: records}, &answer, a.auth())
	if err != nil {
		return fmt.Errorf("registering analysis: %w", err)
	}

	var pending []struct {
		path, putURL string
	}
	for _, f := range answer.Filepaths {
		if f.State == "valid" || f.PutURL == "" {
			continue
		}
		pending = append(pending, struct{ path, putURL string }{f.Filepath, f.PutURL})
	}
	a.Logger.Info("analysis registered",
		zap.String("external_id", answer.ExternalID),
		zap.Int("already_known", len(answer.Filepaths)-len(pending)),
		zap.Int("to_upload", len(pending)))

	if len(pending) > 0 {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrentPuts)
		limiter := rate.NewLimiter(rate.Limit(maxConcurrentPuts), maxConcurrentPuts)
		for _, f := range pending {
			g.Go(func() error {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
				return a.putFile(ctx, f.path, f.putURL)
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("uploading analysis files: %w", err)
		}
	}

	_, err = a.Client.PostJSON(ctx, "/staticanalysis/analyses/"+answer.ExternalID+"/finish",
		map[string]any{}, nil, a.auth())
	if err != nil {
		return fmt.Errorf("finishing analysis: %w", err)
	}
	a.Logger.Info("static analysis complete", zap.Int("uploaded", len(pending)))
	return nil
}

// fingerprint hashes file contents on a bounded worker pool.
func (a *Analyzer) fingerprint(ctx context.Context, paths []string) ([]fileRecord, error) {
	workers := a.Workers
	if workers <= 0 {
		workers = maxConcurrentPuts
	}
	records := make([]fileRecord, len(paths))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				a.Logger.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
				return nil
			}
			sum := sha256.Sum256(data)
			records[i] = fileRecord{Filepath: path, FileHash: hex.EncodeToString(sum[:])}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := records[:0]
	for _, r := range records {
		if r.Filepath != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

// putFile stores one file behind its pre-signed URL. The client
// already backs off on throttling and transient failures, so one
// logical attempt suffices here.
func (a *Analyzer) putFile(ctx context.Context, path, putURL string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if _, err := a.Client.PutBlob(ctx, putURL, data); err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}
	return nil
}
