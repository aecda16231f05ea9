// Package cache inspects and mutates the on-disk package cache. It is a
// stateless scanner: every call re-reads storage, so results reflect
// concurrent changes made by other processes between calls.
package cache

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"pkgrun/internal/version"
)

// Entry describes one installed tool version discovered in the cache. The
// version is the cache directory name and is not guaranteed to parse as a
// version identifier.
type Entry struct {
	PackageID   string
	Version     string
	CommandName string
}

// Inspector is the capability surface the orchestrator and CLI consume.
type Inspector interface {
	ListInstalled() []Entry
	GetTool(packageID string) (Entry, bool)
	GetToolVersions(packageID string) []Entry
	RemoveTool(packageID string) bool
	ClearAll() int
	ExecutablePath(packageID, pinnedVersion string) (string, bool)
}

// Logger is the minimal logging surface this package needs.
type Logger interface {
	Printf(format string, v ...any)
}

// FS scans a package cache rooted at a directory tree.
type FS struct {
	Root string
	Log  Logger
}

var _ Inspector = (*FS)(nil)

func (f *FS) logf(format string, v ...any) {
	if f == nil || f.Log == nil {
		return
	}
	f.Log.Printf(format, v...)
}

// ListInstalled enumerates every qualifying package version under the cache
// root, ordered by package id case-insensitive ascending. A missing or
// unreadable root yields an empty result, not an error.
func (f *FS) ListInstalled() []Entry {
	entries := []Entry{}

	packages, err := os.ReadDir(f.Root)
	if err != nil {
		return entries
	}

	for _, pkgDir := range packages {
		if !pkgDir.IsDir() {
			continue
		}
		versions, err := os.ReadDir(filepath.Join(f.Root, pkgDir.Name()))
		if err != nil {
			continue
		}
		for _, verDir := range versions {
			if !verDir.IsDir() {
				continue
			}
			dir := filepath.Join(f.Root, pkgDir.Name(), verDir.Name())
			manifest, ok := ReadManifest(dir)
			if !ok || !manifest.IsTool() {
				continue
			}
			id := manifest.Metadata.ID
			if id == "" {
				id = pkgDir.Name()
			}
			entries = append(entries, Entry{
				PackageID:   id,
				Version:     verDir.Name(),
				CommandName: manifest.CommandName(id),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].PackageID) < strings.ToLower(entries[j].PackageID)
	})
	return entries
}

// GetTool returns the first installed entry matching the package id
// case-insensitively.
func (f *FS) GetTool(packageID string) (Entry, bool) {
	for _, entry := range f.ListInstalled() {
		if strings.EqualFold(entry.PackageID, packageID) {
			return entry, true
		}
	}
	return Entry{}, false
}

// GetToolVersions returns every installed entry for the package id.
func (f *FS) GetToolVersions(packageID string) []Entry {
	matches := []Entry{}
	for _, entry := range f.ListInstalled() {
		if strings.EqualFold(entry.PackageID, packageID) {
			matches = append(matches, entry)
		}
	}
	return matches
}

// RemoveTool deletes the whole package directory, all versions included.
// False means the package was absent or the delete failed; neither case is
// an error for callers.
func (f *FS) RemoveTool(packageID string) bool {
	dir := PackageDir(f.Root, packageID)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	if err := os.RemoveAll(dir); err != nil {
		f.logf("remove %s: %v", dir, err)
		return false
	}
	return true
}

// ClearAll removes every distinct installed package id and returns how many
// ids were removed. Two cached versions of one tool count once.
func (f *FS) ClearAll() int {
	removed := 0
	seen := map[string]bool{}
	for _, entry := range f.ListInstalled() {
		key := strings.ToLower(entry.PackageID)
		if seen[key] {
			continue
		}
		seen[key] = true
		if f.RemoveTool(entry.PackageID) {
			removed++
		}
	}
	return removed
}

// ExecutablePath locates the runnable entry point for a package. An empty
// pinnedVersion selects the greatest cached version whose directory name
// parses as a version identifier, or the first-enumerated directory when
// none parse. Any missing piece of the expected structure yields false.
func (f *FS) ExecutablePath(packageID, pinnedVersion string) (string, bool) {
	pkgDir := PackageDir(f.Root, packageID)

	ver := pinnedVersion
	if ver == "" {
		ver = f.latestVersionDir(pkgDir)
	}
	if ver == "" {
		return "", false
	}

	dir := filepath.Join(pkgDir, ver)
	manifest, ok := ReadManifest(dir)
	if !ok || !manifest.IsTool() {
		return "", false
	}

	descriptor := findDescriptor(filepath.Join(dir, ToolsDirName))
	if descriptor == "" {
		return "", false
	}

	executable := strings.TrimSuffix(descriptor, DescriptorSuffix)
	if ok, _ := fileExists(executable); ok {
		return executable, true
	}
	if runtime.GOOS == "windows" {
		if ok, _ := fileExists(executable + ".exe"); ok {
			return executable + ".exe", true
		}
	}
	return "", false
}

// latestVersionDir picks the greatest parseable version directory name,
// falling back to the first-enumerated directory when nothing parses.
func (f *FS) latestVersionDir(pkgDir string) string {
	dirs, err := os.ReadDir(pkgDir)
	if err != nil {
		return ""
	}

	first := ""
	best := ""
	var bestVersion version.Version
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		if first == "" {
			first = d.Name()
		}
		v, ok := version.Parse(d.Name())
		if !ok {
			continue
		}
		if best == "" || version.Compare(v, bestVersion) > 0 {
			best = d.Name()
			bestVersion = v
		}
	}
	if best != "" {
		return best
	}
	return first
}

// findDescriptor walks the tools subtree for the first runtime-descriptor
// file. Walk errors are skipped rather than propagated: a directory torn by
// a concurrent extraction should look absent, not fatal.
func findDescriptor(toolsDir string) string {
	var match string
	_ = filepath.WalkDir(toolsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), DescriptorSuffix) {
			match = path
			return io.EOF
		}
		return nil
	})
	return match
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
