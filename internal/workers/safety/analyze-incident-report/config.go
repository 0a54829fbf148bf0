package analyzeincidentreport

import (
	"time"

	"eam-assistant/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Minute,
	}
}

func FromWorker(w config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	return cfg
}
