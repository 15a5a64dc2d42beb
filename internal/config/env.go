package config

import (
	"os"
	"strconv"
)

// FromEnv overlays DURAQ_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("DURAQ_AUTO_CREATE_QUEUES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoCreateQueues = b
		}
	}
	if v := os.Getenv("DURAQ_QUEUE_NAME_REGEX"); v != "" {
		cfg.QueueNameRegex = v
	}
	if v := os.Getenv("DURAQ_PAYLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PayloadMaxBytes = n
		}
	}
	if v := os.Getenv("DURAQ_MAX_QUEUES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxQueues = n
		}
	}
}
