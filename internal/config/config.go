package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// AutoCreateQueues allows enqueue to implicitly start a queue actor for
	// an unknown name instead of requiring an explicit create first.
	AutoCreateQueues bool `json:"autoCreateQueues" yaml:"autoCreateQueues"`
	// QueueNameRegex constrains queue names accepted by the registry.
	QueueNameRegex string `json:"queueNameRegex" yaml:"queueNameRegex"`
	// PayloadMaxBytes caps the size of a single enqueued payload.
	PayloadMaxBytes int `json:"payloadMaxBytes" yaml:"payloadMaxBytes"`
	// MaxQueues caps how many queues the registry will start (0 = unlimited).
	MaxQueues int `json:"maxQueues" yaml:"maxQueues"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		AutoCreateQueues: true,
		QueueNameRegex:   "^[a-z0-9-_]{1,64}$",
		PayloadMaxBytes:  1 << 20,
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
