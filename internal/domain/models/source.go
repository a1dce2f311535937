package models

import "time"

// SourceCategory names a data category served by providers.
type SourceCategory string

const (
	CategoryPrices      SourceCategory = "prices"
	CategoryPoolProfits SourceCategory = "pool_profits"
	CategoryFees        SourceCategory = "fees"
)

// SourceStatus is the probe-driven health state of a source.
type SourceStatus string

const (
	SourceUnknown   SourceStatus = "unknown"
	SourceHealthy   SourceStatus = "healthy"
	SourceUnhealthy SourceStatus = "unhealthy"
)

// SourceDescriptor is the static identity of a data source. Immutable after init.
type SourceDescriptor struct {
	ID        string
	Name      string
	Category  SourceCategory
	Priority  int // lower wins
	BaseURL   string
	Endpoints []string // probe paths, walked in order
	RateLimit float64  // requests per minute
	Timeout   time.Duration
}

// SourceHealth is the mutable health record of a source.
type SourceHealth struct {
	Status       SourceStatus  `json:"status"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	AvgLatency   time.Duration `json:"avg_latency"`
	LastCheck    time.Time     `json:"last_check"`
}
