package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-vision/zoocard/internal/config"
	"github.com/atelier-vision/zoocard/internal/envvar"
)

const schemaPath = "../../zoocard.v1.schema.json"

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "zoocard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
version: "1"
zoo:
  root: /srv/mmpose
  docs:
    - configs
  exclude:
    - "*_template.md"
lint:
  rules:
    metric-range:
      max: 100
linkcheck:
  enabled: true
  timeout: 5s
`)

	cfg, err := config.LoadAndValidate(path, schemaPath)
	require.NoError(t, err)

	assert.Equal(t, "/srv/mmpose", cfg.Zoo.Root)
	assert.Equal(t, []string{"configs"}, cfg.Zoo.Docs)
	assert.True(t, cfg.LinkCheck.Enabled)
	assert.Equal(t, 5*time.Second, cfg.LinkCheck.TimeoutOrDefault())

	// defaults for everything unset
	assert.Equal(t, config.DefaultIndexOutput, cfg.Index.Output)
	assert.Equal(t, config.IndexFormatMarkdown, cfg.Index.Format)
	assert.Equal(t, config.DefaultLinkCheckRate, cfg.LinkCheck.Rate)
	assert.Equal(t, config.DefaultLinkCheckRetries, cfg.LinkCheck.MaxRetries)
	assert.Equal(t, config.DefaultServerHost, cfg.Server.Host)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
}

func TestLoadAndValidate_DefaultDatabasePath(t *testing.T) {
	path := writeConfig(t, "version: \"1\"\nzoo:\n  root: /x\n  docs: [configs]\nindex:\n  database: default\n")

	cfg, err := config.LoadAndValidate(path, schemaPath)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDatabasePath(), cfg.Index.Database)
	assert.NotEqual(t, "default", cfg.Index.Database)
}

func TestLoadAndValidate_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "version: [\n")

	_, err := config.LoadAndValidate(path, schemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")
}

func TestLoadAndValidate_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing zoo":        `version: "1"`,
		"bad version":        "version: \"2\"\nzoo:\n  root: /x\n  docs: [configs]\n",
		"unknown key":        "version: \"1\"\nzoo:\n  root: /x\n  docs: [configs]\nextra: true\n",
		"bad timeout format": "version: \"1\"\nzoo:\n  root: /x\n  docs: [configs]\nlinkcheck:\n  timeout: soon\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadAndValidate(writeConfig(t, content), schemaPath)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestLoadAndValidate_MissingFile(t *testing.T) {
	_, err := config.LoadAndValidate(filepath.Join(t.TempDir(), "absent.yaml"), schemaPath)
	assert.Error(t, err)
}

func TestConfig_ZooRoot(t *testing.T) {
	cfg := &config.Config{Zoo: config.ZooConfig{Root: "/from/config"}}

	root, err := cfg.ZooRoot()
	require.NoError(t, err)
	assert.Equal(t, "/from/config", root)

	t.Setenv(envvar.ZoocardZooRoot, "/from/env")
	root, err = cfg.ZooRoot()
	require.NoError(t, err)
	assert.Equal(t, "/from/env", root)

	t.Setenv(envvar.ZoocardZooRoot, "")
	_, err = (&config.Config{}).ZooRoot()
	assert.ErrorIs(t, err, config.ErrNoZooRoot)
}

func TestConfig_ListenAddr(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, "127.0.0.1:8360", cfg.ListenAddr())

	cfg.Server = config.ServerConfig{Host: "0.0.0.0", Port: 9000}
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr())

	t.Setenv(envvar.ZoocardServerPort, "9001")
	assert.Equal(t, "0.0.0.0:9001", cfg.ListenAddr())
}

func TestLinkCheckConfig_TimeoutOrDefault(t *testing.T) {
	assert.Equal(t, config.DefaultLinkCheckTimeout, config.LinkCheckConfig{}.TimeoutOrDefault())
	assert.Equal(t, config.DefaultLinkCheckTimeout, config.LinkCheckConfig{Timeout: "nope"}.TimeoutOrDefault())
	assert.Equal(t, 90*time.Second, config.LinkCheckConfig{Timeout: "90s"}.TimeoutOrDefault())
}
