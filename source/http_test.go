package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTP(t *testing.T, handler http.HandlerFunc, opts ...Option) *HTTP {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	h, err := NewHTTP(srv.URL+"/v1", opts...)
	require.NoError(t, err)
	h.backoff = time.Millisecond
	return h
}

func TestNewHTTPRejectsScheme(t *testing.T) {
	_, err := NewHTTP("ftp://example.com")
	assert.Error(t, err)
	_, err = NewHTTP("https://example.com")
	assert.NoError(t, err)
}

func TestHTTPGet(t *testing.T) {
	var gotPath, gotAuth, gotRequestID, gotUA string
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Parameter{Name: "db/password", Value: "hunter2", Version: 7})
	}, WithToken("secret"))

	p, err := h.Get(context.Background(), "db/password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", p.Value)
	assert.Equal(t, int64(7), p.Version)
	assert.Equal(t, "/v1/parameters/db%2Fpassword", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.True(t, strings.HasPrefix(gotUA, "paramcache/"))
}

func TestHTTPNotFound(t *testing.T) {
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such parameter", http.StatusNotFound)
	})
	_, err := h.GetParameter(context.Background(), "missing")
	assert.True(t, cache.IsNotFound(err))
	var herr *HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, http.StatusNotFound, herr.Status)
}

func TestHTTPUnauthorized(t *testing.T) {
	var calls atomic.Int32
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := h.GetParameter(context.Background(), "a")
	assert.True(t, cache.IsTransport(err))
	assert.False(t, cache.IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(Parameter{Value: "ok"})
	})
	val, err := h.GetParameter(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, WithHTTPRetries(2))
	_, err := h.GetParameter(context.Background(), "a")
	assert.True(t, cache.IsTransport(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPBadRequestIsNotMarked(t *testing.T) {
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := h.GetParameter(context.Background(), "a")
	require.Error(t, err)
	assert.False(t, cache.IsTransport(err))
	assert.False(t, cache.IsNotFound(err))
}

func TestHTTPContextCancelled(t *testing.T) {
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.GetParameter(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
