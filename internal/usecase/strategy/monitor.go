package strategy

import (
	"time"

	"HashArb/internal/domain/models"
)

const (
	priceHistoryCapacity = 100
	volatilityWindow     = 10
	trendLookback        = 5
)

// PriceMonitor tracks rental price history per algorithm and derives
// volatility classes, trends and the adaptive check interval. Owned by the
// strategy loop; not safe for concurrent use.
type PriceMonitor struct {
	baseInterval time.Duration
	history      map[string][]models.PriceSample
}

func NewPriceMonitor(baseInterval time.Duration) *PriceMonitor {
	return &PriceMonitor{
		baseInterval: baseInterval,
		history:      make(map[string][]models.PriceSample),
	}
}

// AddPrice appends one sample, keeping the most recent entries only.
func (m *PriceMonitor) AddPrice(algorithm string, price float64, market string, now time.Time) {
	samples := append(m.history[algorithm], models.PriceSample{
		Algorithm: algorithm,
		Price:     price,
		Market:    market,
		Timestamp: now,
	})
	if len(samples) > priceHistoryCapacity {
		samples = samples[len(samples)-priceHistoryCapacity:]
	}
	m.history[algorithm] = samples
}

// UpdatePrices records a batch of prices under one timestamp.
func (m *PriceMonitor) UpdatePrices(prices map[string]float64, market string, now time.Time) {
	for algorithm, price := range prices {
		m.AddPrice(algorithm, price, market, now)
	}
}

// VolatilityRatio is the mean absolute relative change over the recent
// window. Zero with fewer than five samples.
func (m *PriceMonitor) VolatilityRatio(algorithm string) float64 {
	samples := m.history[algorithm]
	if len(samples) < 5 {
		return 0
	}
	start := len(samples) - volatilityWindow
	if start < 0 {
		start = 0
	}
	recent := samples[start:]

	sum := 0.0
	n := 0
	for i := 1; i < len(recent); i++ {
		prev := recent[i-1].Price
		if prev == 0 {
			continue
		}
		change := (recent[i].Price - prev) / prev
		if change < 0 {
			change = -change
		}
		sum += change
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Volatility classifies recent movement: under 5% low, under 15% medium,
// high above.
func (m *PriceMonitor) Volatility(algorithm string) models.VolatilityClass {
	ratio := m.VolatilityRatio(algorithm)
	switch {
	case ratio < 0.05:
		return models.VolatilityLow
	case ratio < 0.15:
		return models.VolatilityMedium
	default:
		return models.VolatilityHigh
	}
}

// Trend compares the first and last of the recent samples. The second
// return is false when fewer samples exist than the lookback.
func (m *PriceMonitor) Trend(algorithm string) (models.PriceTrend, bool) {
	samples := m.history[algorithm]
	if len(samples) < trendLookback {
		return models.TrendStable, false
	}
	recent := samples[len(samples)-trendLookback:]
	first := recent[0].Price
	last := recent[len(recent)-1].Price
	if first == 0 {
		return models.TrendStable, false
	}
	change := (last - first) / first
	switch {
	case change > 0.05:
		return models.TrendRising, true
	case change < -0.05:
		return models.TrendFalling, true
	default:
		return models.TrendStable, true
	}
}

// AdaptiveInterval maps an algorithm's volatility to a check interval:
// 2 minutes when calm, 1 minute when moving, 30 seconds when turbulent.
func (m *PriceMonitor) AdaptiveInterval(algorithm string) time.Duration {
	if len(m.history[algorithm]) == 0 {
		return m.baseInterval
	}
	switch m.Volatility(algorithm) {
	case models.VolatilityLow:
		return 120 * time.Second
	case models.VolatilityMedium:
		return 60 * time.Second
	default:
		return 30 * time.Second
	}
}

// MinAdaptiveInterval is the shortest interval across the given algorithms,
// or the base interval when none are tracked.
func (m *PriceMonitor) MinAdaptiveInterval(algorithms []string) time.Duration {
	if len(algorithms) == 0 {
		return m.baseInterval
	}
	min := time.Duration(0)
	for _, algorithm := range algorithms {
		iv := m.AdaptiveInterval(algorithm)
		if min == 0 || iv < min {
			min = iv
		}
	}
	if min == 0 {
		return m.baseInterval
	}
	return min
}

// LatestPrice returns the newest sample for an algorithm.
func (m *PriceMonitor) LatestPrice(algorithm string) (models.PriceSample, bool) {
	samples := m.history[algorithm]
	if len(samples) == 0 {
		return models.PriceSample{}, false
	}
	return samples[len(samples)-1], true
}

// HistoryLen reports how many samples are retained for an algorithm.
func (m *PriceMonitor) HistoryLen(algorithm string) int {
	return len(m.history[algorithm])
}
