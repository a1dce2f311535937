package strategy

import (
	"sort"

	"HashArb/internal/domain/models"
)

// AlgorithmPerformance tracks realized outcomes for one algorithm.
type AlgorithmPerformance struct {
	Algorithm   string  `json:"algorithm"`
	Attempts    int     `json:"attempts"`
	Successes   int     `json:"successes"`
	ProfitSum   float64 `json:"profit_sum"`
	SuccessRate float64 `json:"success_rate"`
	AvgProfit   float64 `json:"avg_profit"`
	Score       float64 `json:"score"`
}

// GuaranteeSelector splits the ranked algorithms into a primary set that is
// actively traded and a backup pool promoted when a primary fails. Owned by
// the strategy loop.
type GuaranteeSelector struct {
	minPrimary  int
	backups     []models.ProfitRecord
	performance map[string]*AlgorithmPerformance
}

func NewGuaranteeSelector(minPrimary int) *GuaranteeSelector {
	return &GuaranteeSelector{
		minPrimary:  minPrimary,
		performance: make(map[string]*AlgorithmPerformance),
	}
}

// SelectPrimary takes the best records as the primary set and keeps the rest
// as backups. Records must already be sorted by net profit descending.
func (g *GuaranteeSelector) SelectPrimary(records []models.ProfitRecord) []models.ProfitRecord {
	n := g.minPrimary
	if n > len(records) {
		n = len(records)
	}
	primary := make([]models.ProfitRecord, n)
	copy(primary, records[:n])

	g.backups = make([]models.ProfitRecord, len(records)-n)
	copy(g.backups, records[n:])
	return primary
}

// BackupFor pops the most profitable backup to replace a failed primary.
func (g *GuaranteeSelector) BackupFor() (models.ProfitRecord, bool) {
	if len(g.backups) == 0 {
		return models.ProfitRecord{}, false
	}
	best := 0
	for i := 1; i < len(g.backups); i++ {
		if g.backups[i].NetProfit > g.backups[best].NetProfit {
			best = i
		}
	}
	record := g.backups[best]
	g.backups = append(g.backups[:best], g.backups[best+1:]...)
	return record, true
}

// BackupCount is the number of algorithms held in reserve.
func (g *GuaranteeSelector) BackupCount() int {
	return len(g.backups)
}

// UpdatePerformance records the outcome of one trading attempt.
func (g *GuaranteeSelector) UpdatePerformance(algorithm string, success bool, profit float64) {
	perf, ok := g.performance[algorithm]
	if !ok {
		perf = &AlgorithmPerformance{Algorithm: algorithm}
		g.performance[algorithm] = perf
	}
	perf.Attempts++
	if success {
		perf.Successes++
		perf.ProfitSum += profit
	}
	perf.SuccessRate = float64(perf.Successes) / float64(perf.Attempts)
	if perf.Successes > 0 {
		perf.AvgProfit = perf.ProfitSum / float64(perf.Successes)
	}
	perf.Score = perf.SuccessRate * perf.AvgProfit * 1000
}

// Ranking lists tracked algorithms by performance score descending.
func (g *GuaranteeSelector) Ranking() []AlgorithmPerformance {
	out := make([]AlgorithmPerformance, 0, len(g.performance))
	for _, perf := range g.performance {
		out = append(out, *perf)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Algorithm < out[j].Algorithm
	})
	return out
}
