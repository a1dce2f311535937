package profit

import (
	"sort"
	"time"

	"HashArb/internal/domain/models"
)

const snapshotCapacity = 500

// algorithmCoins maps algorithms to the coin typically mined with them.
var algorithmCoins = map[string]string{
	"SHA256":          "Bitcoin (BTC)",
	"Scrypt":          "Litecoin (LTC)",
	"Ethash":          "Ethereum (ETH)",
	"X11":             "Dash (DASH)",
	"CryptoNight":     "Monero (XMR)",
	"Equihash":        "Zcash (ZEC)",
	"Lyra2REv2":       "Vertcoin (VTC)",
	"Blake2s":         "Decred (DCR)",
	"Blake14r":        "Siacoin (SC)",
	"DaggerHashimoto": "Ethereum Classic (ETC)",
}

// CoinName returns the display coin for an algorithm, or the algorithm itself.
func CoinName(algorithm string) string {
	if name, ok := algorithmCoins[algorithm]; ok {
		return name
	}
	return algorithm
}

// Snapshot is one ranking pass kept for trend analysis.
type Snapshot struct {
	Time    time.Time
	Records []models.ProfitRecord
}

// Ranker evaluates algorithms per cycle and keeps a bounded snapshot history.
// Not safe for concurrent use; the strategy loop owns it.
type Ranker struct {
	pool    string
	history []Snapshot
}

func NewRanker(pool string) *Ranker {
	return &Ranker{pool: pool}
}

// Build evaluates every algorithm present in both input maps, drops entries
// without positive pool income, and returns records sorted by net profit
// descending. The result is recorded as a snapshot.
func (r *Ranker) Build(prices, profits map[string]float64, fees models.Fees, now time.Time) []models.ProfitRecord {
	records := make([]models.ProfitRecord, 0, len(prices))
	for algorithm, rentalPrice := range prices {
		poolProfit, ok := profits[algorithm]
		if !ok || poolProfit <= 0 {
			continue
		}
		records = append(records, Evaluate(algorithm, rentalPrice, poolProfit, fees, r.pool, now))
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].NetProfit != records[j].NetProfit {
			return records[i].NetProfit > records[j].NetProfit
		}
		return records[i].Algorithm < records[j].Algorithm
	})

	r.history = append(r.history, Snapshot{Time: now, Records: records})
	if len(r.history) > snapshotCapacity {
		r.history = r.history[len(r.history)-snapshotCapacity:]
	}
	return records
}

// Latest returns the most recent snapshot, if any.
func (r *Ranker) Latest() (Snapshot, bool) {
	if len(r.history) == 0 {
		return Snapshot{}, false
	}
	return r.history[len(r.history)-1], true
}

// Trends compares the oldest and newest snapshots inside the lookback
// window. Nil when fewer than two snapshots exist.
func (r *Ranker) Trends(window int) []models.TrendEntry {
	if len(r.history) < 2 {
		return nil
	}
	if window < 2 || window > len(r.history) {
		window = len(r.history)
	}
	recent := r.history[len(r.history)-window:]

	oldest := netByAlgorithm(recent[0].Records)
	newest := netByAlgorithm(recent[len(recent)-1].Records)

	var trends []models.TrendEntry
	for algorithm, current := range newest {
		previous, ok := oldest[algorithm]
		if !ok {
			continue
		}
		delta := current - previous
		pct := 0.0
		if previous != 0 {
			pct = delta / previous * 100
		}
		trends = append(trends, models.TrendEntry{Algorithm: algorithm, Delta: delta, Percent: pct})
	}
	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Delta != trends[j].Delta {
			return trends[i].Delta > trends[j].Delta
		}
		return trends[i].Algorithm < trends[j].Algorithm
	})
	return trends
}

func netByAlgorithm(records []models.ProfitRecord) map[string]float64 {
	out := make(map[string]float64, len(records))
	for _, rec := range records {
		out[rec.Algorithm] = rec.NetProfit
	}
	return out
}

// Summary aggregates one ranking pass.
func (r *Ranker) Summary(records []models.ProfitRecord) models.RankingSummary {
	if len(records) == 0 {
		return models.RankingSummary{}
	}
	s := models.RankingSummary{
		MinNetProfit: records[0].NetProfit,
		MaxNetProfit: records[0].NetProfit,
	}
	marginSum := 0.0
	for _, rec := range records {
		if rec.NetProfit > 0 {
			s.Profitable++
		} else {
			s.Unprofitable++
		}
		if rec.NetProfit < s.MinNetProfit {
			s.MinNetProfit = rec.NetProfit
		}
		if rec.NetProfit > s.MaxNetProfit {
			s.MaxNetProfit = rec.NetProfit
		}
		marginSum += rec.ProfitMargin
	}
	s.MeanMargin = marginSum / float64(len(records))
	return s
}

// TopProfitableCoins lists the coin names of the best profitable records.
func (r *Ranker) TopProfitableCoins(records []models.ProfitRecord, n int) []string {
	var coins []string
	for _, rec := range records {
		if rec.NetProfit <= 0 {
			continue
		}
		coins = append(coins, CoinName(rec.Algorithm))
		if len(coins) == n {
			break
		}
	}
	return coins
}
