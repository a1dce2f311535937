package profit

import (
	"fmt"
	"testing"
	"time"

	"HashArb/internal/domain/models"
)

func TestBuildSortsAndSkips(t *testing.T) {
	r := NewRanker("nicehash")
	prices := map[string]float64{"SHA256": 0.001, "Scrypt": 0.002, "X11": 0.001, "Ethash": 0.001}
	profits := map[string]float64{"SHA256": 0.002, "Scrypt": 0.005, "X11": 0}
	// Ethash has no pool profit, X11 has zero: both skipped.
	records := r.Build(prices, profits, models.Fees{}, time.Now())
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Algorithm != "Scrypt" || records[1].Algorithm != "SHA256" {
		t.Fatalf("unexpected order %v %v", records[0].Algorithm, records[1].Algorithm)
	}
	if records[0].NetProfit < records[1].NetProfit {
		t.Fatalf("records not sorted by net profit")
	}
}

func TestSnapshotHistoryBounded(t *testing.T) {
	r := NewRanker("nicehash")
	prices := map[string]float64{"SHA256": 0.001}
	profits := map[string]float64{"SHA256": 0.002}
	for i := 0; i < snapshotCapacity+10; i++ {
		r.Build(prices, profits, models.Fees{}, time.Now())
	}
	if len(r.history) != snapshotCapacity {
		t.Fatalf("expected %d snapshots, got %d", snapshotCapacity, len(r.history))
	}
}

func TestTrendsNeedTwoSnapshots(t *testing.T) {
	r := NewRanker("nicehash")
	r.Build(map[string]float64{"SHA256": 0.001}, map[string]float64{"SHA256": 0.002}, models.Fees{}, time.Now())
	if got := r.Trends(5); got != nil {
		t.Fatalf("expected nil trends, got %v", got)
	}
}

func TestTrends(t *testing.T) {
	r := NewRanker("nicehash")
	now := time.Now()
	r.Build(map[string]float64{"SHA256": 0.001}, map[string]float64{"SHA256": 0.002}, models.Fees{}, now)
	r.Build(map[string]float64{"SHA256": 0.001}, map[string]float64{"SHA256": 0.003}, models.Fees{}, now.Add(time.Minute))

	trends := r.Trends(10)
	if len(trends) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(trends))
	}
	if trends[0].Delta <= 0 {
		t.Fatalf("expected rising delta, got %v", trends[0].Delta)
	}
	if trends[0].Percent <= 0 {
		t.Fatalf("expected positive percent, got %v", trends[0].Percent)
	}
}

func TestSummary(t *testing.T) {
	r := NewRanker("nicehash")
	records := []models.ProfitRecord{
		{Algorithm: "SHA256", NetProfit: 0.002, ProfitMargin: 40},
		{Algorithm: "Scrypt", NetProfit: -0.001, ProfitMargin: -10},
	}
	s := r.Summary(records)
	if s.Profitable != 1 || s.Unprofitable != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.MaxNetProfit != 0.002 || s.MinNetProfit != -0.001 {
		t.Fatalf("unexpected min/max %+v", s)
	}
	if s.MeanMargin != 15 {
		t.Fatalf("unexpected mean margin %v", s.MeanMargin)
	}
}

func TestTopProfitableCoins(t *testing.T) {
	r := NewRanker("nicehash")
	records := []models.ProfitRecord{
		{Algorithm: "SHA256", NetProfit: 0.002},
		{Algorithm: "Scrypt", NetProfit: 0.001},
		{Algorithm: "X11", NetProfit: -0.001},
	}
	coins := r.TopProfitableCoins(records, 3)
	if len(coins) != 2 {
		t.Fatalf("expected 2 coins, got %v", coins)
	}
	if coins[0] != "Bitcoin (BTC)" {
		t.Fatalf("unexpected first coin %s", coins[0])
	}
}

func TestCoinNameFallback(t *testing.T) {
	if got := CoinName("KawPow"); got != "KawPow" {
		t.Fatalf("expected passthrough, got %s", got)
	}
	if got := CoinName("Equihash"); got != "Zcash (ZEC)" {
		t.Fatalf("unexpected coin %s", got)
	}
}

func BenchmarkBuild(b *testing.B) {
	r := NewRanker("nicehash")
	prices := make(map[string]float64)
	profits := make(map[string]float64)
	for i := 0; i < 30; i++ {
		algo := fmt.Sprintf("Algo%d", i)
		prices[algo] = 0.001
		profits[algo] = 0.002
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Build(prices, profits, models.Fees{}, time.Now())
	}
}
