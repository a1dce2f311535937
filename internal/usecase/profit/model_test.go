package profit

import (
	"math"
	"testing"
	"time"

	"HashArb/internal/domain/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNetProfit(t *testing.T) {
	// 0.002 pool income, 0.001 rental at 2% fee, 2% pool fee:
	// 0.002 - 0.001*1.02 - 0.002*0.02 = 0.00094
	got := NetProfit(0.001, 0.002, 0.02, 0.02)
	if !almostEqual(got, 0.00094) {
		t.Fatalf("unexpected net profit %v", got)
	}
}

func TestMargin(t *testing.T) {
	if got := Margin(0.00094, 0.002); !almostEqual(got, 47) {
		t.Fatalf("unexpected margin %v", got)
	}
	if got := Margin(0.001, 0); got != 0 {
		t.Fatalf("expected zero margin without pool income, got %v", got)
	}
}

func TestBreakEvenPrice(t *testing.T) {
	price := BreakEvenPrice(0.002, 0.02, 0.02)
	if net := NetProfit(price, 0.002, 0.02, 0.02); !almostEqual(net, 0) {
		t.Fatalf("break-even price %v leaves net %v", price, net)
	}
}

func TestScore(t *testing.T) {
	if got := Score(-0.001, 0.002); got != 0 {
		t.Fatalf("expected zero score for a loss, got %v", got)
	}
	if got := Score(0.004, 0.002); got != 100 {
		t.Fatalf("expected capped score, got %v", got)
	}
	if got := Score(0.001, 0.002); !almostEqual(got, 50) {
		t.Fatalf("unexpected score %v", got)
	}
}

func TestOptimalMarket(t *testing.T) {
	market, fee := OptimalMarket(map[string]float64{"EU": 0.03, "US": 0.02})
	if market != "US" || fee != 0.02 {
		t.Fatalf("unexpected optimal market %s %v", market, fee)
	}
}

func TestFeeForDefault(t *testing.T) {
	market, fee := FeeFor(models.Fees{}, "SHA256")
	if market != "" || fee != DefaultFeeRate {
		t.Fatalf("expected default fee, got %s %v", market, fee)
	}
}

func TestPoolFeeRate(t *testing.T) {
	if got := PoolFeeRate("NiceHash"); got != 0.02 {
		t.Fatalf("unexpected nicehash fee %v", got)
	}
	if got := PoolFeeRate("unknown-pool"); got != 0.025 {
		t.Fatalf("unexpected default fee %v", got)
	}
}

func TestBreakdown(t *testing.T) {
	b := Breakdown(0.001, 0.002, 0.02, 0.02)
	if !almostEqual(b.RentalCost, 0.00102) {
		t.Fatalf("unexpected rental cost %v", b.RentalCost)
	}
	if !almostEqual(b.TotalCost, b.RentalCost+b.PoolFeeCost) {
		t.Fatalf("total cost mismatch")
	}
	if !almostEqual(b.NetProfit, 0.00094) {
		t.Fatalf("unexpected net %v", b.NetProfit)
	}
}

func TestEvaluatePicksCheapestMarket(t *testing.T) {
	fees := models.Fees{"SHA256": {"EU": 0.03, "US": 0.02}}
	rec := Evaluate("SHA256", 0.001, 0.002, fees, "nicehash", time.Now())
	if rec.Market != "US" {
		t.Fatalf("expected US market, got %s", rec.Market)
	}
	if !almostEqual(rec.NetProfit, 0.00094) {
		t.Fatalf("unexpected net %v", rec.NetProfit)
	}
}
