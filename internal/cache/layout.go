package cache

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Cache layout: <root>/<id lowercase>/<version>/ holding the package
// manifest, the archive plus its integrity side files, and the unpacked
// "tools" subtree with the runnable payload.
const (
	ManifestFileName = "manifest.xml"
	ToolsDirName     = "tools"

	// DescriptorSuffix marks the runtime-descriptor file inside the tools
	// subtree; the entry-point executable is the adjacent file named by the
	// descriptor minus this suffix.
	DescriptorSuffix = ".runtime.json"

	archiveExt      = ".pkg"
	checksumSuffix  = ".sha256"
	integritySuffix = ".metadata"
)

// PackageDir returns the directory holding every cached version of a
// package.
func PackageDir(root, packageID string) string {
	return filepath.Join(root, strings.ToLower(packageID))
}

// VersionDir returns the directory for one cached package version.
func VersionDir(root, packageID, version string) string {
	return filepath.Join(PackageDir(root, packageID), version)
}

// ArchiveName returns the package archive file name for a version.
func ArchiveName(packageID, version string) string {
	return fmt.Sprintf("%s.%s%s", strings.ToLower(packageID), version, archiveExt)
}

// ChecksumName returns the checksum side-file name for an archive.
func ChecksumName(archiveName string) string {
	return archiveName + checksumSuffix
}

// IntegrityName returns the content-hash side-file name for an archive.
func IntegrityName(archiveName string) string {
	return archiveName + integritySuffix
}
