// internal/workers/recommendation/build-recommendation/config.go
package buildrecommendation

import "time"

type Config struct {
	GenAIBaseURL string
	GenAIAPIKey  string
	Timeout      time.Duration
	MaxRetries   int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		MaxRetries: 2,
	}
}
