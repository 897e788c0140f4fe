package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
	"github.com/codecov/cli/internal/finder"
	"github.com/codecov/cli/internal/resolver"
)

const testSHA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

// fakeProbe stands in for a git working tree.
type fakeProbe struct {
	tracked []string
}

func (p fakeProbe) NetworkRoot(ctx context.Context) string         { return "." }
func (p fakeProbe) HeadCommit(ctx context.Context) string          { return testSHA }
func (p fakeProbe) HeadParents(ctx context.Context) []string       { return nil }
func (p fakeProbe) RecentSHAs(ctx context.Context, n int) []string { return nil }
func (p fakeProbe) ListTracked(ctx context.Context, root string) ([]string, error) {
	return p.tracked, nil
}
func (p fakeProbe) Get(ctx context.Context, field resolver.Field) string { return "" }

// fakeBackend records every protocol call of one run.
type fakeBackend struct {
	mux         *http.ServeMux
	srv         *httptest.Server
	commits     int
	reports     int
	slotRequest map[string]any
	blob        []byte
	completed   bool

	rejectCommits bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{mux: http.NewServeMux()}
	b.srv = httptest.NewServer(b.mux)
	t.Cleanup(b.srv.Close)

	b.mux.HandleFunc("POST /upload/github/owner::::repo/commits",
		func(w http.ResponseWriter, r *http.Request) {
			b.commits++
			if b.rejectCommits {
				w.WriteHeader(http.StatusForbidden)
			}
		})
	b.mux.HandleFunc("POST /upload/github/owner::::repo/commits/"+testSHA+"/reports",
		func(w http.ResponseWriter, r *http.Request) {
			b.reports++
		})
	b.mux.HandleFunc("POST /upload/github/owner::::repo/commits/"+testSHA+"/reports/default/uploads",
		func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &b.slotRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"external_id":         "ext-1",
				"raw_upload_location": b.srv.URL + "/storage/blob-1",
			})
		})
	b.mux.HandleFunc("PUT /storage/blob-1", func(w http.ResponseWriter, r *http.Request) {
		b.blob, _ = io.ReadAll(r.Body)
	})
	b.mux.HandleFunc("POST /upload/github/owner::::repo/commits/"+testSHA+"/upload-complete",
		func(w http.ResponseWriter, r *http.Request) {
			b.completed = true
		})
	return b
}

func (b *fakeBackend) client() *api.Client {
	return api.New(api.Options{BaseURL: b.srv.URL, Token: "tok", Logger: zap.NewNop()})
}

func baseParams(root string) Params {
	return Params{
		CommitSHA:  testSHA,
		Slug:       "owner/repo",
		GitService: "github",
		ReportCode: "default",
		ReportType: finder.ReportTypeCoverage,
		SearchRoot: root,
		CIService:  "github-actions",
		Flags:      []string{"unit"},
	}
}

func TestRunHappyPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "coverage.xml"), []byte("<coverage/>"), 0o644))

	backend := newFakeBackend(t)
	u := &Uploader{Client: backend.client(), Probe: fakeProbe{}, Logger: zap.NewNop()}

	res, err := u.Run(context.Background(), baseParams(root))
	require.NoError(t, err)
	assert.True(t, res.OK())

	assert.Equal(t, 1, backend.commits, "commit must be registered exactly once")
	assert.Equal(t, 1, backend.reports, "report must be registered exactly once")
	assert.Equal(t, []any{"unit"}, backend.slotRequest["flags"])
	assert.Equal(t, "github-actions", backend.slotRequest["ci_service"])

	var doc map[string]any
	require.NoError(t, json.Unmarshal(backend.blob, &doc))
	files, ok := doc["coverage_files"].([]any)
	require.True(t, ok)
	assert.Len(t, files, 1)
	assert.True(t, backend.completed, "notifications must be triggered after the put")
}

func TestRunCommitFailureFatalForCoverage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "coverage.xml"), []byte("<coverage/>"), 0o644))

	backend := newFakeBackend(t)
	backend.rejectCommits = true
	u := &Uploader{Client: backend.client(), Probe: fakeProbe{}, Logger: zap.NewNop()}

	_, err := u.Run(context.Background(), baseParams(root))
	require.Error(t, err)
	var phaseErr *api.PhaseError
	require.True(t, errors.As(err, &phaseErr))
	assert.Equal(t, "create_commit", phaseErr.Phase)
	assert.Equal(t, 0, backend.reports)
	assert.Nil(t, backend.blob)
}

func TestRunCommitFailureToleratedForTestResults(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "junit.xml")
	require.NoError(t, os.WriteFile(path, []byte("<testsuite/>"), 0o644))

	backend := newFakeBackend(t)
	backend.rejectCommits = true
	u := &Uploader{Client: backend.client(), Probe: fakeProbe{}, Logger: zap.NewNop()}

	p := baseParams(root)
	p.ReportType = finder.ReportTypeTestResults
	p.ExplicitFiles = []string{path}
	res, err := u.Run(context.Background(), p)
	require.NoError(t, err, "a commit failure must not stop a test-results upload")
	assert.True(t, res.OK())
	assert.Equal(t, 0, backend.reports, "reports are a coverage-only phase")
	assert.NotNil(t, backend.blob)
	assert.True(t, backend.completed)
}

func TestRunNoArtifactsIsAnError(t *testing.T) {
	backend := newFakeBackend(t)
	u := &Uploader{Client: backend.client(), Probe: fakeProbe{}, Logger: zap.NewNop()}

	_, err := u.Run(context.Background(), baseParams(t.TempDir()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrNoArtifacts))

	var phaseErr *api.PhaseError
	require.True(t, errors.As(err, &phaseErr))
	assert.Equal(t, "collect", phaseErr.Phase)
}

func TestRunNoArtifactsHandled(t *testing.T) {
	backend := newFakeBackend(t)
	u := &Uploader{Client: backend.client(), Probe: fakeProbe{}, Logger: zap.NewNop()}

	p := baseParams(t.TempDir())
	p.HandleNoReportsFound = true
	res, err := u.Run(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.True(t, backend.completed, "notifications must still be triggered")
	assert.Equal(t, 0, backend.commits)
	assert.Equal(t, 0, backend.reports)
	assert.Nil(t, backend.blob)
}

func TestRunDryRunSkipsNetwork(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "coverage.xml"), []byte("<coverage/>"), 0o644))

	u := &Uploader{
		Client: api.New(api.Options{BaseURL: "http://127.0.0.1:1", Token: "tok", Logger: zap.NewNop()}),
		Probe:  fakeProbe{},
		Logger: zap.NewNop(),
	}
	p := baseParams(root)
	p.DryRun = true
	res, err := u.Run(context.Background(), p)
	require.NoError(t, err, "a dry run must not touch the backend")
	assert.True(t, res.OK())
}

func TestFilterNetwork(t *testing.T) {
	files := []string{"src/a.go", "src/b.go", "docs/readme.md"}
	assert.Equal(t, []string{"src/a.go", "src/b.go"},
		filterNetwork(files, NetworkOptions{Filter: "src/"}))
	assert.Equal(t, []string{"app/src/a.go", "app/src/b.go", "app/docs/readme.md"},
		prefixNetwork(files, "app/"))
}

func TestCollectFixesFollowNetworkScoping(t *testing.T) {
	root := t.TempDir()
	src := "}\n\nfunc main() {\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(src), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "coverage.xml"), []byte("<coverage/>"), 0o644))

	u := &Uploader{Probe: fakeProbe{tracked: []string{"main.go"}}, Logger: zap.NewNop()}
	p := baseParams(root)
	p.Network.RootFolder = root
	p.Network.Prefix = "app/"

	col, err := u.collect(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"app/main.go"}, col.network)
	require.Len(t, col.fixes, 1, "files must be read relative to the network root")
	assert.Equal(t, "app/main.go", col.fixes[0].Path,
		"path fix keys must match the network file names")
}
