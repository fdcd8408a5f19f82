// internal/workers/analytics/recommend-events/config.go
package recommendevents

import (
	"time"

	"event-insights-workers/internal/analytics/recommend"
	"event-insights-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	Limit    int
}

func LoadConfig(wcfg config.WorkerConfig, analytics config.AnalyticsConfig) *Config {
	cfg := &Config{
		Timeout:  30 * time.Second,
		CacheTTL: analytics.CacheTTL,
		Limit:    analytics.RecommendationLimit,
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = recommend.DefaultLimit
	}
	return cfg
}
