package models

import (
	"strings"
	"time"
)

// VolatilityClass buckets recent price movement of an algorithm.
type VolatilityClass string

const (
	VolatilityLow    VolatilityClass = "low"
	VolatilityMedium VolatilityClass = "medium"
	VolatilityHigh   VolatilityClass = "high"
)

// PriceTrend is the direction of recent rental prices.
type PriceTrend string

const (
	TrendRising  PriceTrend = "rising"
	TrendFalling PriceTrend = "falling"
	TrendStable  PriceTrend = "stable"
)

// PriceSample is one observed rental price for an algorithm.
type PriceSample struct {
	Algorithm string
	Price     float64
	Market    string
	Timestamp time.Time
}

// Fees maps algorithm -> market -> fee rate. Rates are fractions in [0, 1).
type Fees map[string]map[string]float64

// Flatten encodes the two-level fee table as a single-level snapshot keyed
// "algorithm/market", the shape the category cache stores.
func (f Fees) Flatten() map[string]float64 {
	flat := make(map[string]float64, len(f))
	for algorithm, quotes := range f {
		for market, rate := range quotes {
			flat[algorithm+"/"+market] = rate
		}
	}
	return flat
}

// ExpandFees rebuilds a fee table from its flattened snapshot form.
func ExpandFees(flat map[string]float64) Fees {
	fees := make(Fees)
	for key, rate := range flat {
		i := strings.IndexByte(key, '/')
		if i < 0 {
			continue
		}
		quotes, ok := fees[key[:i]]
		if !ok {
			quotes = make(map[string]float64)
			fees[key[:i]] = quotes
		}
		quotes[key[i+1:]] = rate
	}
	return fees
}

// ProfitRecord is the per-algorithm outcome of one profitability evaluation.
type ProfitRecord struct {
	Algorithm     string    `json:"algorithm"`
	Market        string    `json:"market"`
	RentalPrice   float64   `json:"rental_price"`
	PoolProfit    float64   `json:"pool_profit"`
	RentalFeeCost float64   `json:"rental_fee_cost"`
	PoolFeeCost   float64   `json:"pool_fee_cost"`
	NetProfit     float64   `json:"net_profit"`
	ProfitMargin  float64   `json:"profit_margin"`
	Timestamp     time.Time `json:"timestamp"`
}

// RankingSummary aggregates one ranking pass.
type RankingSummary struct {
	Profitable   int     `json:"profitable"`
	Unprofitable int     `json:"unprofitable"`
	MeanMargin   float64 `json:"mean_margin"`
	MinNetProfit float64 `json:"min_net_profit"`
	MaxNetProfit float64 `json:"max_net_profit"`
}

// TrendEntry is the profit movement of one algorithm over a lookback window.
type TrendEntry struct {
	Algorithm string  `json:"algorithm"`
	Delta     float64 `json:"delta"`
	Percent   float64 `json:"percent"`
}
