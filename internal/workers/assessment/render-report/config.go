// internal/workers/assessment/render-report/config.go
package renderreport

import (
	"time"

	"move-improve-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(appCfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(appCfg, TaskType)
	return &Config{
		Timeout: config.GetDuration(wcfg.Timeout),
	}
}
