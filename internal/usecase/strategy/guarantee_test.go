package strategy

import (
	"testing"

	"HashArb/internal/domain/models"
)

func rankedRecords(nets ...float64) []models.ProfitRecord {
	algos := []string{"SHA256", "Scrypt", "Ethash", "X11", "Equihash"}
	records := make([]models.ProfitRecord, len(nets))
	for i, net := range nets {
		records[i] = models.ProfitRecord{Algorithm: algos[i], NetProfit: net}
	}
	return records
}

func TestSelectPrimary(t *testing.T) {
	g := NewGuaranteeSelector(3)
	primary := g.SelectPrimary(rankedRecords(0.005, 0.004, 0.003, 0.002, 0.001))
	if len(primary) != 3 {
		t.Fatalf("expected 3 primary, got %d", len(primary))
	}
	if g.BackupCount() != 2 {
		t.Fatalf("expected 2 backups, got %d", g.BackupCount())
	}
}

func TestSelectPrimaryShortList(t *testing.T) {
	g := NewGuaranteeSelector(3)
	primary := g.SelectPrimary(rankedRecords(0.005))
	if len(primary) != 1 || g.BackupCount() != 0 {
		t.Fatalf("unexpected split %d/%d", len(primary), g.BackupCount())
	}
}

func TestBackupForPopsBest(t *testing.T) {
	g := NewGuaranteeSelector(2)
	g.SelectPrimary(rankedRecords(0.005, 0.004, 0.001, 0.003, 0.002))

	best, ok := g.BackupFor()
	if !ok || best.NetProfit != 0.003 {
		t.Fatalf("expected best backup 0.003, got %v %v", best.NetProfit, ok)
	}
	if g.BackupCount() != 2 {
		t.Fatalf("expected backup consumed")
	}

	g.BackupFor()
	g.BackupFor()
	if _, ok := g.BackupFor(); ok {
		t.Fatalf("expected no backup left")
	}
}

func TestPerformanceScore(t *testing.T) {
	g := NewGuaranteeSelector(2)
	g.UpdatePerformance("SHA256", true, 0.002)
	g.UpdatePerformance("SHA256", true, 0.004)
	g.UpdatePerformance("SHA256", false, 0)

	ranking := g.Ranking()
	if len(ranking) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(ranking))
	}
	perf := ranking[0]
	if perf.Attempts != 3 || perf.Successes != 2 {
		t.Fatalf("unexpected counts %+v", perf)
	}
	// (2/3) * 0.003 * 1000 = 2
	if perf.Score < 1.99 || perf.Score > 2.01 {
		t.Fatalf("unexpected score %v", perf.Score)
	}
}

func TestRankingOrder(t *testing.T) {
	g := NewGuaranteeSelector(2)
	g.UpdatePerformance("SHA256", true, 0.001)
	g.UpdatePerformance("Scrypt", true, 0.005)

	ranking := g.Ranking()
	if ranking[0].Algorithm != "Scrypt" {
		t.Fatalf("expected Scrypt first, got %s", ranking[0].Algorithm)
	}
}
