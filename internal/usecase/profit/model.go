package profit

import (
	"strings"
	"time"

	"HashArb/internal/domain/models"
)

// DefaultFeeRate is the marketplace fee applied when no quote is available.
const DefaultFeeRate = 0.03

const defaultPoolFeeRate = 0.025

// poolFeeRates are typical payout fees per mining pool.
var poolFeeRates = map[string]float64{
	"nicehash":  0.02,
	"f2pool":    0.025,
	"antpool":   0.025,
	"slushpool": 0.02,
	"viabtc":    0.025,
	"btc.com":   0.025,
	"poolin":    0.02,
}

// PoolFeeRate returns the payout fee for a pool, defaulting to 2.5%.
func PoolFeeRate(pool string) float64 {
	if rate, ok := poolFeeRates[strings.ToLower(pool)]; ok {
		return rate
	}
	return defaultPoolFeeRate
}

// NetProfit is pool income minus rental cost (fee included) and pool fee.
func NetProfit(rentalPrice, poolProfit, feeRate, poolFeeRate float64) float64 {
	rentalCost := rentalPrice * (1 + feeRate)
	return poolProfit - rentalCost - poolProfit*poolFeeRate
}

// Margin is net profit relative to pool income, in percent. Zero when the
// pool income is not positive.
func Margin(netProfit, poolProfit float64) float64 {
	if poolProfit <= 0 {
		return 0
	}
	return netProfit / poolProfit * 100
}

// BreakEvenPrice is the rental price at which net profit is zero.
func BreakEvenPrice(poolProfit, feeRate, poolFeeRate float64) float64 {
	return poolProfit * (1 - poolFeeRate) / (1 + feeRate)
}

// Score maps profitability to 0-100.
func Score(netProfit, poolProfit float64) float64 {
	if netProfit <= 0 || poolProfit <= 0 {
		return 0
	}
	score := netProfit / poolProfit * 100
	if score > 100 {
		score = 100
	}
	return score
}

// OptimalMarket picks the market with the lowest fee. Ties break on market
// name so the choice is deterministic.
func OptimalMarket(quotes map[string]float64) (string, float64) {
	market := ""
	best := 0.0
	for m, rate := range quotes {
		if market == "" || rate < best || (rate == best && m < market) {
			market = m
			best = rate
		}
	}
	return market, best
}

// FeeFor resolves the fee quote for an algorithm: the cheapest market, or
// the default rate when the algorithm has no quotes.
func FeeFor(fees models.Fees, algorithm string) (string, float64) {
	quotes := fees[algorithm]
	if len(quotes) == 0 {
		return "", DefaultFeeRate
	}
	return OptimalMarket(quotes)
}

// CostBreakdown itemizes the costs behind one evaluation.
type CostBreakdown struct {
	RentalPrice float64 `json:"rental_price"`
	FeeRate     float64 `json:"fee_rate"`
	RentalFee   float64 `json:"rental_fee"`
	RentalCost  float64 `json:"rental_cost"`
	PoolFeeRate float64 `json:"pool_fee_rate"`
	PoolFeeCost float64 `json:"pool_fee_cost"`
	TotalCost   float64 `json:"total_cost"`
	NetProfit   float64 `json:"net_profit"`
}

// Breakdown returns the itemized cost structure for one rental.
func Breakdown(rentalPrice, poolProfit, feeRate, poolFeeRate float64) CostBreakdown {
	rentalCost := rentalPrice * (1 + feeRate)
	poolFeeCost := poolProfit * poolFeeRate
	totalCost := rentalCost + poolFeeCost
	return CostBreakdown{
		RentalPrice: rentalPrice,
		FeeRate:     feeRate,
		RentalFee:   rentalCost - rentalPrice,
		RentalCost:  rentalCost,
		PoolFeeRate: poolFeeRate,
		PoolFeeCost: poolFeeCost,
		TotalCost:   totalCost,
		NetProfit:   poolProfit - totalCost,
	}
}

// Evaluate builds the profit record for one algorithm against one pool.
func Evaluate(algorithm string, rentalPrice, poolProfit float64, fees models.Fees, pool string, now time.Time) models.ProfitRecord {
	market, feeRate := FeeFor(fees, algorithm)
	poolFee := PoolFeeRate(pool)
	net := NetProfit(rentalPrice, poolProfit, feeRate, poolFee)
	return models.ProfitRecord{
		Algorithm:     algorithm,
		Market:        market,
		RentalPrice:   rentalPrice,
		PoolProfit:    poolProfit,
		RentalFeeCost: rentalPrice * feeRate,
		PoolFeeCost:   poolProfit * poolFee,
		NetProfit:     net,
		ProfitMargin:  Margin(net, poolProfit),
		Timestamp:     now,
	}
}
