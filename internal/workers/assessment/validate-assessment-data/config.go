// internal/workers/assessment/validate-assessment-data/config.go
package validateassessmentdata

import "time"

// No per-worker config needed beyond the timeout, struct kept for consistency
type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
