package media

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalCache(t *testing.T) *HTTPCache {
	t.Helper()
	c := NewHTTPCache(t.TempDir(), 5*time.Second, nil)
	c.AllowPrivate = true
	return c
}

func TestHTTPCacheDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	c := newLocalCache(t)
	path, err := c.DownloadToLocal(context.Background(), srv.URL+"/a.jpg", "promo_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.Dir, "promo_1.jpg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	entries, err := os.ReadDir(c.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestHTTPCacheRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
	}{
		{"not found", http.StatusNotFound, "image/jpeg"},
		{"html", http.StatusOK, "text/html"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				w.WriteHeader(tc.status)
				w.Write([]byte("body"))
			}))
			defer srv.Close()

			c := newLocalCache(t)
			_, err := c.DownloadToLocal(context.Background(), srv.URL, "x.jpg")
			require.Error(t, err)

			entries, _ := os.ReadDir(c.Dir)
			assert.Empty(t, entries)
		})
	}
}

func TestHTTPCacheFilenameStaysInDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png"))
	}))
	defer srv.Close()

	c := newLocalCache(t)
	path, err := c.DownloadToLocal(context.Background(), srv.URL, "../../escape.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.Dir, "escape.jpg"), path)
}

func TestHTTPCacheURLGuard(t *testing.T) {
	c := NewHTTPCache(t.TempDir(), time.Second, nil)
	c.lookupIP = func(host string) ([]net.IP, error) {
		if host == "internal.test" {
			return []net.IP{net.ParseIP("10.1.2.3")}, nil
		}
		return []net.IP{net.ParseIP("93.184.216.34")}, nil
	}

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://cdn.test/a.jpg", false},
		{"ftp://cdn.test/a.jpg", true},
		{"http://localhost/a.jpg", true},
		{"http://internal.test/a.jpg", true},
		{"https:///a.jpg", true},
	}
	for _, tc := range tests {
		err := c.validateURL(tc.url)
		if tc.wantErr {
			assert.Error(t, err, tc.url)
		} else {
			assert.NoError(t, err, tc.url)
		}
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"169.254.169.254", true},
		{"::1", true},
		{"8.8.8.8", false},
		{"172.32.0.1", false},
	}

	for _, tc := range tests {
		t.Run(tc.ip, func(t *testing.T) {
			assert.Equal(t, tc.expected, isPrivateIP(net.ParseIP(tc.ip)))
		})
	}
}

func TestHTTPCachePrune(t *testing.T) {
	c := newLocalCache(t)
	old := filepath.Join(c.Dir, "old.jpg")
	fresh := filepath.Join(c.Dir, "fresh.jpg")
	require.NoError(t, os.WriteFile(old, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("b"), 0o644))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	removed, err := c.Prune(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
}

func TestHTTPCachePruneMissingDir(t *testing.T) {
	c := NewHTTPCache(filepath.Join(t.TempDir(), "nope"), time.Second, nil)
	removed, err := c.Prune(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
