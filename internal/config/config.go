package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/atelier-vision/zoocard/internal/envvar"
	"github.com/atelier-vision/zoocard/internal/xfs"
)

// IndexFormat selects the rendering of the aggregated results index.
type IndexFormat string

const (
	// IndexFormatMarkdown renders the index as a markdown document.
	IndexFormatMarkdown IndexFormat = "markdown"

	// IndexFormatJSON renders the index as a JSON document.
	IndexFormatJSON IndexFormat = "json"
)

// Config holds the main configuration for the application.
type Config struct {
	Version   string          `json:"version"             yaml:"version"`
	Zoo       ZooConfig       `json:"zoo"                 yaml:"zoo"`
	Index     IndexConfig     `json:"index,omitempty"     yaml:"index,omitempty"`
	Lint      LintConfig      `json:"lint,omitempty"      yaml:"lint,omitempty"`
	LinkCheck LinkCheckConfig `json:"linkcheck,omitempty" yaml:"linkcheck,omitempty"`
	Server    ServerConfig    `json:"server,omitempty"    yaml:"server,omitempty"`
}

// ZooConfig describes the documentation tree zoocard operates on.
type ZooConfig struct {
	// Root is the repository root that repo-relative links (for example
	// /configs/body_2d_keypoint/...) resolve against.
	Root string `json:"root" yaml:"root"`

	// Docs lists the subtrees of Root scanned for model cards.
	Docs []string `json:"docs" yaml:"docs"`

	// Exclude lists glob patterns (relative, slash-separated) skipped
	// during the scan.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// IndexConfig holds configuration for index builds. Database enables
// sqlite persistence; the value "default" selects the per-OS cache
// location.
type IndexConfig struct {
	Output   string      `json:"output,omitempty"   yaml:"output,omitempty"`
	Format   IndexFormat `json:"format,omitempty"   yaml:"format,omitempty"`
	Database string      `json:"database,omitempty" yaml:"database,omitempty"`
	Workers  int         `json:"workers,omitempty"  yaml:"workers,omitempty"`
}

// LintConfig holds per-rule options keyed by rule name. An entry with
// "enabled: false" disables the rule.
type LintConfig struct {
	Rules map[string]map[string]any `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// LinkCheckConfig holds configuration for live artifact link checking.
type LinkCheckConfig struct {
	Enabled    bool    `json:"enabled"               yaml:"enabled"`
	Rate       float64 `json:"rate,omitempty"        yaml:"rate,omitempty"`
	Timeout    string  `json:"timeout,omitempty"     yaml:"timeout,omitempty"`
	MaxRetries int     `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
}

// TimeoutOrDefault parses the configured per-request timeout, falling back
// to the default when unset or malformed.
func (l LinkCheckConfig) TimeoutOrDefault() time.Duration {
	if l.Timeout != "" {
		if d, err := time.ParseDuration(l.Timeout); err == nil && d > 0 {
			return d
		}
	}
	return DefaultLinkCheckTimeout
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// Error definitions for the config package.
var (
	ErrNoZooRoot = errors.New("no zoo root configured")
)

// ZooRoot returns the effective zoo root directory.
// Precedence:
// 1. ZOOCARD_ZOO_ROOT environment variable.
// 2. Root field in the config.
func (c *Config) ZooRoot() (string, error) {
	if p := os.Getenv(envvar.ZoocardZooRoot); p != "" {
		return xfs.ExpandTilde(p), nil
	}
	if c.Zoo.Root != "" {
		return xfs.ExpandTilde(c.Zoo.Root), nil
	}
	return "", ErrNoZooRoot
}

// ListenAddr returns the host:port the server should listen on, honoring
// the ZOOCARD_SERVER_PORT override.
func (c *Config) ListenAddr() string {
	host := c.Server.Host
	if host == "" {
		host = DefaultServerHost
	}

	port := c.Server.Port
	if p := os.Getenv(envvar.ZoocardServerPort); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	if port == 0 {
		port = DefaultServerPort
	}

	return fmt.Sprintf("%s:%d", host, port)
}
