package strategy

import (
	"math"
	"sync"
	"time"

	"HashArb/internal/domain/models"
)

// SpeedMode selects how throughput limits are derived.
type SpeedMode string

const (
	SpeedFixed    SpeedMode = "fixed"
	SpeedAdaptive SpeedMode = "adaptive"
	SpeedDynamic  SpeedMode = "dynamic"
)

const changeLogCapacity = 100

// dynamicBaseSpeeds are per-algorithm baselines for the dynamic mode, in TH/s.
var dynamicBaseSpeeds = map[string]float64{
	"SHA256":      1000,
	"Ethash":      800,
	"Lyra2REv2":   600,
	"BeamHash":    500,
	"CuckooCycle": 400,
}

const dynamicDefaultSpeed = 500.0

// SpeedConfig bounds and shapes throughput limit decisions.
type SpeedConfig struct {
	Mode             SpeedMode
	FixedLimit       float64
	MinLimit         float64
	MaxLimit         float64
	Increment        float64
	AdaptiveFactor   float64
	DynamicThreshold float64
}

// SpeedManager derives per-order throughput limits and keeps a bounded log
// of limit changes. Safe for concurrent use; the admin API can adjust limits
// while the strategy loop runs.
type SpeedManager struct {
	mu      sync.Mutex
	cfg     SpeedConfig
	current map[string]float64 // algorithm -> applied limit
	changes []models.SpeedChange
}

func NewSpeedManager(cfg SpeedConfig) *SpeedManager {
	return &SpeedManager{
		cfg:     cfg,
		current: make(map[string]float64),
	}
}

// OptimalLimit computes the raw target limit for an algorithm from the
// configured mode, the expected net profit and the volatility ratio.
func (sm *SpeedManager) OptimalLimit(algorithm string, netProfit, volatilityRatio float64) float64 {
	switch sm.cfg.Mode {
	case SpeedFixed:
		return sm.clamp(sm.cfg.FixedLimit)
	case SpeedDynamic:
		return sm.dynamicLimit(algorithm, netProfit)
	default:
		return sm.adaptiveLimit(netProfit, volatilityRatio)
	}
}

func (sm *SpeedManager) adaptiveLimit(netProfit, volatilityRatio float64) float64 {
	base := sm.cfg.MaxLimit * sm.cfg.AdaptiveFactor
	profitFactor := math.Min(netProfit/0.01, 2.0)
	if profitFactor < 0 {
		profitFactor = 0
	}
	volatilityFactor := math.Max(0.5, 1-volatilityRatio)
	return sm.clamp(base * profitFactor * volatilityFactor)
}

func (sm *SpeedManager) dynamicLimit(algorithm string, netProfit float64) float64 {
	base, ok := dynamicBaseSpeeds[algorithm]
	if !ok {
		base = dynamicDefaultSpeed
	}
	threshold := sm.cfg.DynamicThreshold
	if threshold <= 0 {
		threshold = 0.005
	}
	ratio := netProfit / threshold
	var multiplier float64
	if netProfit > threshold {
		multiplier = math.Min(ratio, 1.5)
	} else {
		multiplier = math.Max(ratio, 0.3)
	}
	return sm.clamp(base * multiplier)
}

// AdjustToIncrement rounds a raw limit to the configured step, then clamps.
func (sm *SpeedManager) AdjustToIncrement(limit float64) float64 {
	if sm.cfg.Increment > 0 {
		limit = math.Round(limit/sm.cfg.Increment) * sm.cfg.Increment
	}
	return sm.clamp(limit)
}

// UpdateLimit applies a new limit for an algorithm and records the change.
// The applied value is clamped; no entry is logged when nothing changes.
func (sm *SpeedManager) UpdateLimit(algorithm string, newLimit float64, reason string, now time.Time) float64 {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	newLimit = sm.clamp(newLimit)
	old := sm.current[algorithm]
	if old == newLimit {
		return newLimit
	}
	sm.current[algorithm] = newLimit
	sm.changes = append(sm.changes, models.SpeedChange{
		Time:   now,
		Old:    old,
		New:    newLimit,
		Reason: reason,
	})
	if len(sm.changes) > changeLogCapacity {
		sm.changes = sm.changes[len(sm.changes)-changeLogCapacity:]
	}
	return newLimit
}

// CurrentLimit returns the applied limit for an algorithm, falling back to
// the fixed limit before any update happened.
func (sm *SpeedManager) CurrentLimit(algorithm string) float64 {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if limit, ok := sm.current[algorithm]; ok {
		return limit
	}
	return sm.clamp(sm.cfg.FixedLimit)
}

// Changes returns a copy of the change log.
func (sm *SpeedManager) Changes() []models.SpeedChange {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	out := make([]models.SpeedChange, len(sm.changes))
	copy(out, sm.changes)
	return out
}

func (sm *SpeedManager) clamp(limit float64) float64 {
	if limit < sm.cfg.MinLimit {
		return sm.cfg.MinLimit
	}
	if limit > sm.cfg.MaxLimit {
		return sm.cfg.MaxLimit
	}
	return limit
}
