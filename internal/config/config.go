// Package config resolves rpull settings. Precedence is built-in
// defaults, then the optional YAML config file, then RPULL_* environment
// variables; command-line flags override all of these at the CLI layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const maxAutoConnections = 8

type Config struct {
	Connections string        `envconfig:"CONNECTIONS" yaml:"connections"`
	ChunkSize   string        `envconfig:"CHUNK_SIZE" yaml:"chunk_size"`
	Timeout     time.Duration `envconfig:"TIMEOUT" yaml:"timeout"`
	KATimeout   time.Duration `envconfig:"KEEP_ALIVE_TIMEOUT" yaml:"keep_alive_timeout"`
	UserAgent   string        `envconfig:"USER_AGENT" yaml:"user_agent"`
	ProxyURL    string        `envconfig:"PROXY" yaml:"proxy"`
	Debug       bool          `envconfig:"DEBUG" yaml:"debug"`
}

func defaults() Config {
	return Config{
		Connections: "1",
		ChunkSize:   "8M",
		Timeout:     3 * time.Minute,
		KATimeout:   90 * time.Second,
	}
}

// Load resolves the configuration from defaults, file, and environment.
func Load() (*Config, error) {
	cfg := defaults()
	if path := configFilePath(); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process("rpull", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env: %w", err)
	}
	return &cfg, nil
}

// ResolveConnections turns the connections setting into a worker count.
// "auto" derives from host parallelism capped at a safety ceiling.
func (c *Config) ResolveConnections() (int, error) {
	switch c.Connections {
	case "", "1":
		return 1, nil
	case "auto":
		return min(runtime.GOMAXPROCS(0), maxAutoConnections), nil
	}
	n, err := strconv.Atoi(c.Connections)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid connections value: %q", c.Connections)
	}
	return n, nil
}

func configFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".config", "rpull.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}
