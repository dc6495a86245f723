package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Defaults applied when the corresponding config fields are unset.
const (
	DefaultServerHost       = "127.0.0.1"
	DefaultServerPort       = 8360
	DefaultIndexOutput      = "zoo-index.md"
	DefaultLinkCheckRate    = 4.0
	DefaultLinkCheckRetries = 3
	DefaultLinkCheckTimeout = 10 * time.Second
)

// DefaultConfigPath returns the default path for the zoocard config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "zoocard", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "zoocard")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "zoocard")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "zoocard")
		}
		return filepath.Join(home, ".config", "zoocard")
	}
}

// DefaultDatabasePath returns the default path for the zoocard index database.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "zoocard", "index.db")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "zoocard", "index.db")
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "zoocard", "index.db")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "zoocard", "index.db")
		}
		return filepath.Join(home, ".cache", "zoocard", "index.db")
	}
}
