package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/graph"
)

type StoreConfig struct {
	DBPath string `toml:"db_path"`
}

type GraphConfig struct {
	URI       string `toml:"uri"`
	User      string `toml:"user"`
	Password  string `toml:"password"`
	Disabled  bool   `toml:"disabled"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// Timeout is the per-call budget for graph backend round-trips.
func (g GraphConfig) Timeout() time.Duration {
	if g.TimeoutMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(g.TimeoutMS) * time.Millisecond
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Store     StoreConfig  `toml:"store"`
	Graph     GraphConfig  `toml:"graph"`
	Relate    graph.Config `toml:"relate"`
	Integrate core.Config  `toml:"integrate"`
	Server    ServerConfig `toml:"server"`
}

// Default is the zero-config setup: local SQLite, graph at the conventional
// bolt port, shipped detector thresholds.
func Default() *Config {
	return &Config{
		Store: StoreConfig{DBPath: "data/memories.db"},
		Graph: GraphConfig{
			URI:       "bolt://localhost:7687",
			TimeoutMS: 3000,
		},
		Relate:    graph.DefaultConfig(),
		Integrate: core.DefaultConfig(),
		Server:    ServerConfig{Port: "8080"},
	}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the loaded config.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MEMORY_DB_PATH"); v != "" {
		c.Store.DBPath = v
	}
	if v := os.Getenv("GRAPH_URI"); v != "" {
		c.Graph.URI = v
	}
	if v := os.Getenv("GRAPH_USER"); v != "" {
		c.Graph.User = v
	}
	if v := os.Getenv("GRAPH_PASSWORD"); v != "" {
		c.Graph.Password = v
	}
	if os.Getenv("GRAPH_DISABLED") == "true" {
		c.Graph.Disabled = true
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}
