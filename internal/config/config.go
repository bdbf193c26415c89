package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendKuzu   = "kuzu"
)

// Defaults applied by Load for fields left empty.
const (
	DefaultRPCAddr = "127.0.0.1:8640"
	DefaultMCPAddr = "127.0.0.1:8641"
)

// StoreConfig selects where results are kept.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"`
	// Path is the Kuzu database directory; empty means in-memory Kuzu.
	Path string `yaml:"path,omitempty"`
}

// Config holds settings loaded from stageresults.yml.
type Config struct {
	RPCAddr  string        `yaml:"rpcAddr,omitempty"`
	MCPAddr  string        `yaml:"mcpAddr,omitempty"`
	Store    StoreConfig   `yaml:"store,omitempty"`
	Fixture  string        `yaml:"fixture,omitempty"`
	BunchGap time.Duration `yaml:"bunchGap,omitempty"`
	Verbose  bool          `yaml:"verbose,omitempty"`
}

// Load attempts to read stageresults.yml or stageresults.yaml from the given
// directory. Returns the default config (not an error) if no config file
// exists.
func Load(dir string) (*Config, error) {
	cfg := &Config{}
	for _, name := range []string{"stageresults.yml", "stageresults.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RPCAddr == "" {
		c.RPCAddr = DefaultRPCAddr
	}
	if c.MCPAddr == "" {
		c.MCPAddr = DefaultMCPAddr
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendMemory
	}
}

// Validate reports settings that cannot be served.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendKuzu:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.BunchGap < 0 {
		return fmt.Errorf("negative bunchGap %s", c.BunchGap)
	}
	return nil
}
