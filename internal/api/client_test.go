package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.Handler, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	opts.Logger = zap.NewNop()
	return New(opts)
}

func TestDoRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}), Options{})

	res, err := client.PostJSON(context.Background(), "/ping", map[string]string{}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"bad token"}`))
	}), Options{})

	res, err := client.PostJSON(context.Background(), "/ping", map[string]string{}, nil)
	assert.True(t, errors.Is(err, ErrBackendRefused))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
	require.NotNil(t, res.Error)
	assert.Equal(t, "HTTP Error 401", res.Error.Code)
}

func TestAuthHeaderWithToken(t *testing.T) {
	var gotAuth string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}), Options{Token: "sometoken"})

	_, err := client.PostJSON(context.Background(), "/x", nil, nil, client.Auth())
	require.NoError(t, err)
	assert.Equal(t, "token sometoken", gotAuth)
}

func TestAuthHeaderTokenless(t *testing.T) {
	var gotTokenless, gotAuth string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTokenless = r.Header.Get(TokenlessHeader)
		gotAuth = r.Header.Get("Authorization")
	}), Options{Tokenless: "forkowner:branch"})

	_, err := client.PostJSON(context.Background(), "/x", nil, nil, client.Auth())
	require.NoError(t, err)
	assert.Equal(t, "forkowner:branch", gotTokenless)
	assert.Empty(t, gotAuth)
}

func TestRequestUploadRejectsMissingStorageURL(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"external_id":"abc"}`))
	}), Options{Token: "tok"})

	_, _, err := client.RequestUpload(context.Background(), "github", "owner/repo", "0000000000000000000000000000000000000000", "default", UploadRequest{})
	assert.True(t, errors.Is(err, ErrBackendRefused))
}

func TestLegacyUploadParsesTwoLineResponse(t *testing.T) {
	var gotToken, gotQuery string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Upload-Token")
		gotQuery = r.URL.RawQuery
		w.Write([]byte("https://codecov.example/result\nhttps://storage.example/put\n"))
	}), Options{Token: "legacy-token"})

	resultURL, putURL, _, err := client.LegacyUpload(context.Background(), map[string]string{
		"commit": "abc",
		"slug":   "owner/repo",
		"empty":  "",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://codecov.example/result", resultURL)
	assert.Equal(t, "https://storage.example/put", putURL)
	assert.Equal(t, "legacy-token", gotToken)
	assert.Contains(t, gotQuery, "commit=abc")
	assert.NotContains(t, gotQuery, "empty")
}

func TestLegacyUploadMalformedResponse(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("only-one-line"))
	}), Options{Token: "tok"})

	_, _, _, err := client.LegacyUpload(context.Background(), map[string]string{"commit": "abc"})
	assert.True(t, errors.Is(err, ErrBackendRefused))
}

func TestPollReportResults(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Write([]byte(`{"state":"pending"}`))
			return
		}
		w.Write([]byte(`{"state":"finished","result":{"state":"passed"}}`))
	}), Options{Token: "tok"})

	rr, _, ok, err := client.PollReportResults(context.Background(),
		"github", "owner/repo", "abc", "default", 10, time.Minute, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StateFinished, rr.State)
	assert.Equal(t, int32(3), calls.Load())
}
