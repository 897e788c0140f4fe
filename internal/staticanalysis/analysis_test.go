package staticanalysis

import (
	"context"
	"encoding/json"
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
)

const testSHA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func TestAnalyzerRun(t *testing.T) {
	dir := t.TempDir()
	known := filepath.Join(dir, "known.go")
	fresh := filepath.Join(dir, "fresh.go")
	require.NoError(t, os.WriteFile(known, []byte("package a\n"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("package b\n"), 0o644))

	var (
		gotAuth     string
		gotManifest analysisRequest
		gotBlob     []byte
		finished    bool
	)
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("POST /staticanalysis/analyses", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotManifest))
		json.NewEncoder(w).Encode(map[string]any{
			"external_id": "an-1",
			"filepaths": []map[string]string{
				{"state": "valid", "filepath": known},
				{"state": "created", "filepath": fresh, "raw_upload_location": srv.URL + "/store/fresh"},
			},
		})
	})
	mux.HandleFunc("PUT /store/fresh", func(w http.ResponseWriter, r *http.Request) {
		gotBlob, _ = io.ReadAll(r.Body)
	})
	mux.HandleFunc("POST /staticanalysis/analyses/an-1/finish", func(w http.ResponseWriter, r *http.Request) {
		finished = true
	})

	a := &Analyzer{
		Client: api.New(api.Options{BaseURL: srv.URL, Logger: zap.NewNop()}),
		Token:  "repo-token",
		Logger: zap.NewNop(),
	}
	require.NoError(t, a.Run(context.Background(), testSHA, []string{known, fresh}))

	assert.Equal(t, "Repotoken repo-token", gotAuth)
	assert.Equal(t, testSHA, gotManifest.Commit)
	require.Len(t, gotManifest.Filepaths, 2)
	assert.Len(t, gotManifest.Filepaths[0].FileHash, 64, "hashes are hex encoded sha256")
	assert.Equal(t, "package b\n", string(gotBlob), "only the unknown file is uploaded")
	assert.True(t, finished)
}

func TestAnalyzerSkipsUnreadableFiles(t *testing.T) {
	var manifestFiles int
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mux.HandleFunc("POST /staticanalysis/analyses", func(w http.ResponseWriter, r *http.Request) {
		var req analysisRequest
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		manifestFiles = len(req.Filepaths)
		json.NewEncoder(w).Encode(map[string]any{"external_id": "an-2", "filepaths": []any{}})
	})
	mux.HandleFunc("POST /staticanalysis/analyses/an-2/finish", func(w http.ResponseWriter, r *http.Request) {})

	dir := t.TempDir()
	real := filepath.Join(dir, "real.go")
	require.NoError(t, os.WriteFile(real, []byte("package a\n"), 0o644))

	a := &Analyzer{
		Client: api.New(api.Options{BaseURL: srv.URL, Logger: zap.NewNop()}),
		Token:  "repo-token",
		Logger: zap.NewNop(),
	}
	err := a.Run(context.Background(), testSHA, []string{real, filepath.Join(dir, "ghost.go")})
	require.NoError(t, err)
	assert.Equal(t, 1, manifestFiles)
}

func TestAnalyzerPutRetriesStayInClient(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(src, []byte("package a\n"), 0o644))

	var puts int
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mux.HandleFunc("POST /staticanalysis/analyses", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"external_id": "an-3",
			"filepaths": []map[string]string{
				{"state": "created", "filepath": src, "raw_upload_location": srv.URL + "/store/a"},
			},
		})
	})
	mux.HandleFunc("PUT /store/a", func(w http.ResponseWriter, r *http.Request) {
		puts++
		w.WriteHeader(http.StatusForbidden)
	})

	a := &Analyzer{
		Client: api.New(api.Options{BaseURL: srv.URL, Logger: zap.NewNop()}),
		Token:  "repo-token",
		Logger: zap.NewNop(),
	}
	err := a.Run(context.Background(), testSHA, []string{src})
	require.Error(t, err)
	assert.Equal(t, 1, puts, "a terminal rejection must not be retried on top of the client ladder")
}

func TestAnalyzerNoFiles(t *testing.T) {
	a := &Analyzer{
		Client: api.New(api.Options{BaseURL: "http://127.0.0.1:1", Logger: zap.NewNop()}),
		Token:  "repo-token",
		Logger: zap.NewNop(),
	}
	assert.NoError(t, a.Run(context.Background(), testSHA, nil),
		"an empty tree must not touch the backend")
}
