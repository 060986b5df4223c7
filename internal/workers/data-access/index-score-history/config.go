// internal/workers/data-access/index-score-history/config.go
package indexscorehistory

import "time"

type Config struct {
	IndexName string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		IndexName: "score_history",
		Timeout:   30 * time.Second,
	}
}
