package predictattributesbulk

import (
	"time"

	"eam-assistant/internal/common/config"
)

type Config struct {
	// Timeout covers the whole batch, not a single attribute.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Minute,
	}
}

func FromWorker(w config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	return cfg
}
