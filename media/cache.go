package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"promoshow/utils"
)

// maxImageBytes bounds a single cached download.
const maxImageBytes = 20 << 20

// HTTPCache downloads remote images into a local cache directory.
type HTTPCache struct {
	Dir    string
	Client *http.Client
	// AllowPrivate disables the private-address guard. Only for local setups.
	AllowPrivate bool
	Logger       *zap.Logger

	lookupIP func(host string) ([]net.IP, error)
}

func NewHTTPCache(dir string, timeout time.Duration, logger *zap.Logger) *HTTPCache {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPCache{
		Dir:      dir,
		Client:   &http.Client{Timeout: timeout},
		Logger:   utils.OrNop(logger),
		lookupIP: net.LookupIP,
	}
}

// DownloadToLocal fetches url into Dir/filename and returns the local path.
// The file appears atomically; a failed download leaves nothing behind.
func (c *HTTPCache) DownloadToLocal(ctx context.Context, rawURL, filename string) (string, error) {
	if err := c.validateURL(rawURL); err != nil {
		return "", fmt.Errorf("URL validation failed for %s: %w", rawURL, err)
	}
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid cache filename %q", filename)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image from %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("URL %s returned non-image content-type: %q (expected image/*)", rawURL, contentType)
	}

	tmp, err := os.CreateTemp(c.Dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxImageBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write cache file: %w", err)
	}
	if n > maxImageBytes {
		return "", fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}

	localPath := filepath.Join(c.Dir, name)
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		return "", fmt.Errorf("finalize cache file: %w", err)
	}

	c.Logger.Debug("cached remote image", zap.String("url", rawURL), zap.String("path", localPath), zap.Int64("bytes", n))
	return localPath, nil
}

// Prune removes cached files older than maxAge and returns how many went.
func (c *HTTPCache) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// validateURL only allows http(s) URLs whose host does not resolve to a
// private or loopback address.
func (c *HTTPCache) validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme '%s' is not allowed; only http and https are permitted", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return errors.New("URL has no hostname")
	}
	if c.AllowPrivate {
		return nil
	}

	if strings.EqualFold(host, "localhost") {
		return errors.New("requests to localhost are not allowed")
	}

	lookup := c.lookupIP
	if lookup == nil {
		lookup = net.LookupIP
	}
	ips, err := lookup(host)
	if err != nil {
		return fmt.Errorf("failed to resolve hostname '%s': %w", host, err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("URL resolves to private IP address %s, which is not allowed", ip.String())
		}
	}

	return nil
}

var privateRanges = []*net.IPNet{
	parseCIDR("10.0.0.0/8"),
	parseCIDR("172.16.0.0/12"),
	parseCIDR("192.168.0.0/16"),
	parseCIDR("127.0.0.0/8"),
	parseCIDR("169.254.0.0/16"),
	parseCIDR("0.0.0.0/8"),
	parseCIDR("::1/128"),
	parseCIDR("fc00::/7"),
	parseCIDR("fe80::/10"),
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateRanges {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("invalid CIDR: %s", cidr))
	}
	return network
}
