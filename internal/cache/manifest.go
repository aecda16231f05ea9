package cache

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
)

const toolPackageType = "tool"

// Manifest is the package metadata document shipped inside every package
// version directory.
type Manifest struct {
	XMLName  xml.Name         `xml:"package"`
	Metadata ManifestMetadata `xml:"metadata"`
}

// ManifestMetadata holds the fields the launcher cares about. Command is
// optional; the package id is the display fallback.
type ManifestMetadata struct {
	ID           string        `xml:"id"`
	Version      string        `xml:"version"`
	Command      string        `xml:"command"`
	PackageTypes []PackageType `xml:"packageTypes>packageType"`
}

// PackageType flags what kind of package this is. Only packages declaring
// the "tool" type are runnable.
type PackageType struct {
	Name string `xml:"name,attr"`
}

// ReadManifest parses the manifest inside a version directory. Any read or
// parse failure means "no manifest", never an error: cache contents are
// external mutable state and a torn write must not abort a scan.
func ReadManifest(versionDir string) (Manifest, bool) {
	contents, err := os.ReadFile(filepath.Join(versionDir, ManifestFileName))
	if err != nil {
		return Manifest{}, false
	}

	var m Manifest
	if err := xml.Unmarshal(contents, &m); err != nil {
		return Manifest{}, false
	}
	return m, true
}

// IsTool reports whether the manifest declares the executable tool package
// type.
func (m Manifest) IsTool() bool {
	for _, pt := range m.Metadata.PackageTypes {
		if strings.EqualFold(pt.Name, toolPackageType) {
			return true
		}
	}
	return false
}

// CommandName returns the declared command name, falling back to the given
// package id.
func (m Manifest) CommandName(packageID string) string {
	if cmd := strings.TrimSpace(m.Metadata.Command); cmd != "" {
		return cmd
	}
	return packageID
}
