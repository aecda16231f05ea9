package registry

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"pkgrun/internal/cache"
)

func writeViaTemp(dest string, resp *http.Response) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "download-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}

// unpackArchive extracts the gzipped tar archive in place into the version
// directory. Extraction is not atomic at the directory level: a concurrent
// reader can observe a partially-extracted package.
func unpackArchive(archivePath, dest string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close()

	return untarStream(gz, dest)
}

func untarStream(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}
		target := filepath.Join(dest, filepath.FromSlash(header.Name))
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("create dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("prepare file %s: %w", target, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("create file %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("write file %s: %w", target, err)
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close file %s: %w", target, err)
			}
		default:
			// Ignore other entry types.
		}
	}
	return nil
}

// integrityDocument is the content-hash side file written next to every
// downloaded archive.
type integrityDocument struct {
	ContentHash string `json:"contentHash"`
}

// writeSideFiles records the archive checksum twice, in the two layouts the
// cache inspector's consumers expect: a bare hex checksum file and a JSON
// content-hash descriptor.
func writeSideFiles(archivePath string) error {
	sum, err := computeChecksum(archivePath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(archivePath)
	name := filepath.Base(archivePath)

	checksumPath := filepath.Join(dir, cache.ChecksumName(name))
	if err := os.WriteFile(checksumPath, []byte(sum+"\n"), 0o644); err != nil {
		return fmt.Errorf("write checksum file: %w", err)
	}

	doc, err := json.MarshalIndent(integrityDocument{ContentHash: "sha256-" + sum}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode integrity document: %w", err)
	}
	integrityPath := filepath.Join(dir, cache.IntegrityName(name))
	if err := os.WriteFile(integrityPath, doc, 0o644); err != nil {
		return fmt.Errorf("write integrity file: %w", err)
	}
	return nil
}

func computeChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
