package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsComplete(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.Store.DBPath)
	assert.NotEmpty(t, cfg.Graph.URI)
	assert.Equal(t, 30, cfg.Relate.TemporalWindowDays)
	assert.Equal(t, 5, cfg.Integrate.MaxContextMemories)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[store]
db_path = "/tmp/test.db"

[relate]
temporal_window_days = 7

[integrate]
max_context_memories = 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.Store.DBPath)
	assert.Equal(t, 7, cfg.Relate.TemporalWindowDays)
	assert.Equal(t, 3, cfg.Integrate.MaxContextMemories)
	// Untouched sections keep defaults.
	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.URI)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MEMORY_DB_PATH", "/var/lib/mem.db")
	t.Setenv("GRAPH_DISABLED", "true")
	t.Setenv("PORT", "9090")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "/var/lib/mem.db", cfg.Store.DBPath)
	assert.True(t, cfg.Graph.Disabled)
	assert.Equal(t, "9090", cfg.Server.Port)
}
