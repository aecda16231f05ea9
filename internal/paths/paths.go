// Package paths resolves the launcher's on-disk locations.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// CacheDirEnv overrides every other source of the package cache location.
const CacheDirEnv = "PKGRUN_CACHE_DIR"

// CacheRoot determines the package cache directory. Resolution order: the
// PKGRUN_CACHE_DIR environment variable, the configured override, then a
// per-OS user directory.
func CacheRoot(configOverride string) (string, error) {
	if override, ok := os.LookupEnv(CacheDirEnv); ok && override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", CacheDirEnv, err)
		}
		return abs, nil
	}

	if configOverride != "" {
		abs, err := filepath.Abs(configOverride)
		if err != nil {
			return "", fmt.Errorf("resolve configured cache dir: %w", err)
		}
		return abs, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "pkgrun", "packages"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "pkgrun", "packages"), nil
		}
		return filepath.Join(home, "AppData", "Local", "pkgrun", "packages"), nil
	default:
		return filepath.Join(home, ".local", "share", "pkgrun", "packages"), nil
	}
}

// ConfigFile returns the user-level configuration file location.
func ConfigFile() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("detect user config dir: %w", err)
	}
	return filepath.Join(base, "pkgrun", "config.yaml"), nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
