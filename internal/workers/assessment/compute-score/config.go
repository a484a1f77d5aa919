// internal/workers/assessment/compute-score/config.go
package computescore

import (
	"time"

	"move-improve-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	RequireAnswers bool
}

func LoadConfig(appCfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(appCfg, TaskType)
	return &Config{
		Timeout:        config.GetDuration(wcfg.Timeout),
		RequireAnswers: appCfg.Scoring.RequireAnswers,
	}
}
