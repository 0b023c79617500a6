package update

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T, tag string, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/repos/khulnasoft/titanrepo/releases/latest" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"tag_name": %q, "html_url": "https://github.com/khulnasoft/titanrepo/releases/%s"}`, tag, tag)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestNotifierCheck(t *testing.T) {
	server, hits := releaseServer(t, "v2.1.0", http.StatusOK)
	statePath := filepath.Join(t.TempDir(), "update-check.json")

	n := NewNotifier("2.0.3", statePath).WithBaseURL(server.URL)
	info, err := n.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Available)
	assert.Equal(t, "2.0.3", info.CurrentVersion)
	assert.Equal(t, "2.1.0", info.LatestVersion)
	assert.Equal(t, "https://github.com/khulnasoft/titanrepo/releases/v2.1.0", info.ReleaseURL)
	assert.Equal(t, int32(1), hits.Load())
	assert.FileExists(t, statePath)
}

func TestNotifierUsesRecentCheck(t *testing.T) {
	server, hits := releaseServer(t, "v2.1.0", http.StatusOK)
	statePath := filepath.Join(t.TempDir(), "update-check.json")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	n := NewNotifier("2.1.0", statePath).
		WithBaseURL(server.URL).
		WithClock(func() time.Time { return now })

	_, err := n.Check(context.Background())
	require.NoError(t, err)

	now = now.Add(CheckInterval - time.Minute)
	info, err := n.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, info.Available)
	assert.Equal(t, int32(1), hits.Load())

	now = now.Add(2 * time.Minute)
	_, err = n.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestNotifierErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server, _ := releaseServer(t, "", http.StatusInternalServerError)
		n := NewNotifier("2.0.0", filepath.Join(t.TempDir(), "state.json")).WithBaseURL(server.URL)
		_, err := n.Check(context.Background())
		assert.Error(t, err)
	})

	t.Run("unparseable current version", func(t *testing.T) {
		n := NewNotifier("dev", filepath.Join(t.TempDir(), "state.json"))
		_, err := n.Check(context.Background())
		assert.ErrorContains(t, err, "invalid current version")
	})
}

func TestNotify(t *testing.T) {
	t.Run("newer release", func(t *testing.T) {
		server, _ := releaseServer(t, "v2.1.0", http.StatusOK)
		var buf bytes.Buffer
		NewNotifier("2.0.0", filepath.Join(t.TempDir(), "state.json")).
			WithBaseURL(server.URL).
			Notify(context.Background(), &buf)
		assert.Contains(t, buf.String(), "2.0.0 -> 2.1.0")
	})

	t.Run("up to date", func(t *testing.T) {
		server, _ := releaseServer(t, "v2.0.0", http.StatusOK)
		var buf bytes.Buffer
		NewNotifier("2.0.0", filepath.Join(t.TempDir(), "state.json")).
			WithBaseURL(server.URL).
			Notify(context.Background(), &buf)
		assert.Empty(t, buf.String())
	})

	t.Run("failure is silent", func(t *testing.T) {
		server, _ := releaseServer(t, "", http.StatusBadGateway)
		var buf bytes.Buffer
		NewNotifier("2.0.0", filepath.Join(t.TempDir(), "state.json")).
			WithBaseURL(server.URL).
			Notify(context.Background(), &buf)
		assert.Empty(t, buf.String())
	})
}

func TestStatePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/cfg", "titanrepo", "update-check.json"), StatePath("/cfg"))
}
