// Package registry talks to the remote package registry and materializes
// downloaded packages into the local cache layout.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pkgrun/internal/cache"
)

const userAgent = "pkgrun/1.0"

// ErrNotFound marks a package or version the registry does not know about.
// Callers above the CLI boundary treat it the same as a transient failure,
// but keeping the distinction makes verbose logs and tests meaningful.
var ErrNotFound = errors.New("package not found in registry")

// Client is the capability surface the orchestrator and CLI consume.
type Client interface {
	// LatestVersion returns the registry's latest published version for a
	// package id.
	LatestVersion(ctx context.Context, packageID string) (string, error)

	// Download materializes a package version into the cache and returns the
	// version it materialized. An empty version resolves to the latest. A
	// version already present in the cache returns immediately without a
	// network fetch.
	Download(ctx context.Context, packageID, version string) (string, error)
}

// Logger is the minimal logging surface this package needs.
type Logger interface {
	Printf(format string, v ...any)
}

// HTTPClient is the production Client over a process-scoped *http.Client
// with a fixed timeout.
type HTTPClient struct {
	base string
	root string
	http *http.Client
	log  Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a registry client. The http.Client is injected so a
// single process-wide instance is shared by every call; a nil client gets a
// conservative default timeout.
func NewHTTPClient(baseURL, cacheRoot string, httpClient *http.Client, log Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		base: strings.TrimRight(baseURL, "/"),
		root: cacheRoot,
		http: httpClient,
		log:  log,
	}
}

func (c *HTTPClient) logf(format string, v ...any) {
	if c == nil || c.log == nil {
		return
	}
	c.log.Printf(format, v...)
}

// versionIndex mirrors the registry's version list document. The registry
// publishes versions in ascending order.
type versionIndex struct {
	Versions []string `json:"versions"`
}

// LatestVersion fetches the version index and returns its final element
// as-is, without re-sorting.
func (c *HTTPClient) LatestVersion(ctx context.Context, packageID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/package/%s/index.json", c.base, url.PathEscape(strings.ToLower(packageID)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("query version index for %s: %w", packageID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%s: %w", packageID, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("version index for %s: unexpected status %s", packageID, resp.Status)
	}

	var index versionIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return "", fmt.Errorf("decode version index for %s: %w", packageID, err)
	}
	if len(index.Versions) == 0 {
		return "", fmt.Errorf("%s: %w", packageID, ErrNotFound)
	}
	return index.Versions[len(index.Versions)-1], nil
}

// Download fetches a package archive, unpacks it into the version directory
// and writes the integrity side files. Partial writes on failure are left in
// place; the directory only qualifies as installed once its manifest parses,
// and a later attempt overwrites.
func (c *HTTPClient) Download(ctx context.Context, packageID, version string) (string, error) {
	if version == "" {
		latest, err := c.LatestVersion(ctx, packageID)
		if err != nil {
			return "", err
		}
		version = latest
	}

	dir := cache.VersionDir(c.root, packageID, version)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		c.logf("%s@%s already cached", packageID, version)
		return version, nil
	}

	archiveName := cache.ArchiveName(packageID, version)
	endpoint := fmt.Sprintf("%s/v1/package/%s/%s/%s",
		c.base,
		url.PathEscape(strings.ToLower(packageID)),
		url.PathEscape(version),
		url.PathEscape(archiveName),
	)

	archivePath := filepath.Join(dir, archiveName)
	if err := c.fetchArchive(ctx, archivePath, endpoint); err != nil {
		return "", err
	}
	if err := unpackArchive(archivePath, dir); err != nil {
		return "", fmt.Errorf("unpack %s: %w", archiveName, err)
	}
	if err := writeSideFiles(archivePath); err != nil {
		return "", err
	}

	c.logf("downloaded %s@%s", packageID, version)
	return version, nil
}

// fetchArchive streams the archive to a temp file and renames it into place
// so a reader never observes a half-written archive file. The version
// directory is only created once the registry has answered the request, so a
// missing package does not leave an empty directory that would short-circuit
// a later retry.
func (c *HTTPClient) fetchArchive(ctx context.Context, dest, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("download %s: %w", endpoint, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download %s: unexpected status %s", endpoint, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("prepare download destination: %w", err)
	}
	return writeViaTemp(dest, resp)
}
