package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cqlcomplete.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 50, cfg.MaxItems)
	assert.Equal(t, 2*time.Second, cfg.Cluster.Timeout)
	assert.Equal(t, "LOCAL_ONE", cfg.Cluster.Consistency)
	assert.False(t, cfg.Cluster.Enabled())
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 30*time.Second, cfg.History.FlushInterval)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
log_level: debug
default_keyspace: shop
max_items: 10
cluster:
  hosts: [10.0.0.1, 10.0.0.2]
  timeout: 500ms
history:
  dir: /var/lib/cqlcomplete
  limit: 20
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "shop", cfg.DefaultKeyspace)
	assert.Equal(t, 10, cfg.MaxItems)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Cluster.Hosts)
	assert.True(t, cfg.Cluster.Enabled())
	assert.Equal(t, 500*time.Millisecond, cfg.Cluster.Timeout)
	assert.Equal(t, "/var/lib/cqlcomplete", cfg.History.Dir)
	assert.Equal(t, 20, cfg.History.Limit)
	// untouched keys keep their defaults
	assert.Equal(t, "LOCAL_ONE", cfg.Cluster.Consistency)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, "default_keyspace: from_file\nmax_items: 10\n")
	t.Setenv("CQLCOMPLETE_DEFAULT_KEYSPACE", "from_env")
	t.Setenv("CQLCOMPLETE_HISTORY__LIMIT", "7")
	t.Setenv("CQLCOMPLETE_CLUSTER__CONSISTENCY", "QUORUM")

	cfg, err := Load(path, map[string]any{"max_items": 3})
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.DefaultKeyspace)
	assert.Equal(t, 7, cfg.History.Limit)
	assert.Equal(t, "QUORUM", cfg.Cluster.Consistency)
	assert.Equal(t, 3, cfg.MaxItems)
}

func TestLoadHostsFromEnv(t *testing.T) {
	t.Setenv("CQLCOMPLETE_CLUSTER__HOSTS", "10.0.0.1,10.0.0.2")

	cfg, err := Load(writeFile(t, "max_items: 5\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Cluster.Hosts)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeFile(t, "max_items: [unclosed\n"), nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		errSubstr string
	}{
		{"negative max items", map[string]any{"max_items": -1}, "max_items"},
		{"zero history limit", map[string]any{"history.limit": 0}, "history.limit"},
		{"bad consistency", map[string]any{"cluster.consistency": "SOME"}, "cluster.consistency"},
		{"empty listen", map[string]any{"server.listen": ""}, "server.listen"},
		{"zero timeout", map[string]any{"cluster.timeout": "0s"}, "cluster.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", tt.overrides)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}
