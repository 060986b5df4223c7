// internal/workers/communication/send-result-notification/config.go
package sendresultnotification

import "time"

type Config struct {
	EmailEnabled   bool
	SMSEnabled     bool
	FromEmail      string
	AWSRegion      string
	ScoreThreshold int
	Timeout        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled:   true,
		SMSEnabled:     true,
		ScoreThreshold: 600,
		Timeout:        30 * time.Second,
	}
}
