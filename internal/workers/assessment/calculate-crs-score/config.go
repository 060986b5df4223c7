// internal/workers/assessment/calculate-crs-score/config.go
package calculatecrsscore

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		CacheTTL: 1 * time.Hour,
	}
}
