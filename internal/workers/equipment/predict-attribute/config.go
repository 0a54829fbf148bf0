// internal/workers/equipment/predict-attribute/config.go
package predictattribute

import (
	"time"

	"eam-assistant/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 90 * time.Second,
	}
}

// FromWorker applies the worker's configured timeout, if any.
func FromWorker(w config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	return cfg
}
