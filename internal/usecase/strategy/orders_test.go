package strategy

import (
	"math"
	"testing"

	"HashArb/internal/domain/models"
)

func newTestOrderManager() *OrderManager {
	return NewOrderManager(OrderManagerConfig{
		MaxOrders:      2,
		MinOrderAmount: 0.001,
		MaxOrderAmount: 0.01,
	})
}

func TestPriorityTiers(t *testing.T) {
	cases := []struct {
		net  float64
		want models.OrderPriority
	}{
		{0.02, models.PriorityCritical},
		{0.006, models.PriorityHigh},
		{0.002, models.PriorityNormal},
		{0.0005, models.PriorityLow},
	}
	for _, c := range cases {
		if got := Priority(c.net); got != c.want {
			t.Fatalf("net %v: expected %v, got %v", c.net, c.want, got)
		}
	}
}

func TestTargetPrice(t *testing.T) {
	base := 0.001
	flat := TargetPrice(base, models.PriorityCritical, models.TrendStable, true)
	if math.Abs(flat-base*1.005) > 1e-12 {
		t.Fatalf("unexpected flat target %v", flat)
	}
	rising := TargetPrice(base, models.PriorityCritical, models.TrendRising, true)
	if rising <= flat {
		t.Fatalf("rising trend should raise the target")
	}
	falling := TargetPrice(base, models.PriorityCritical, models.TrendFalling, true)
	if falling >= flat {
		t.Fatalf("falling trend should lower the target")
	}
	unknown := TargetPrice(base, models.PriorityCritical, models.TrendRising, false)
	if unknown != flat {
		t.Fatalf("unknown trend must not adjust, got %v", unknown)
	}
}

func TestMaxPriceCapped(t *testing.T) {
	base := 0.001
	// Profit ratio far above 10% still concedes at most 5% over base.
	got := MaxPrice(base, 0.01)
	if math.Abs(got-base*1.05) > 1e-12 {
		t.Fatalf("unexpected capped max price %v", got)
	}
	small := MaxPrice(base, 0.0001)
	if small >= got {
		t.Fatalf("smaller profit should concede less")
	}
}

func TestAmountClamped(t *testing.T) {
	om := newTestOrderManager()
	// 0.001 * min(0.02*100, 10) * 2.0 = 0.004
	if got := om.Amount(0.02, models.PriorityCritical); math.Abs(got-0.004) > 1e-12 {
		t.Fatalf("unexpected amount %v", got)
	}
	// Tiny profit floors at the minimum order amount.
	if got := om.Amount(0.0001, models.PriorityLow); got != 0.001 {
		t.Fatalf("expected min clamp, got %v", got)
	}
	// Huge profit ceilings at the maximum.
	if got := om.Amount(1.0, models.PriorityCritical); got != 0.01 {
		t.Fatalf("expected max clamp, got %v", got)
	}
}

func TestAdjustmentFactor(t *testing.T) {
	calm := AdjustmentFactor(models.PriorityCritical, models.VolatilityLow)
	if math.Abs(calm-1.002) > 1e-12 {
		t.Fatalf("unexpected calm factor %v", calm)
	}
	turbulent := AdjustmentFactor(models.PriorityCritical, models.VolatilityHigh)
	if math.Abs(turbulent-1.002*1.5) > 1e-12 {
		t.Fatalf("unexpected turbulent factor %v", turbulent)
	}
}

func TestShouldCreateGates(t *testing.T) {
	om := newTestOrderManager()

	if om.ShouldCreate("SHA256", 0.002, false) {
		t.Fatalf("missing credentials must block creation")
	}
	if om.ShouldCreate("SHA256", 0.0005, true) {
		t.Fatalf("profit at or below the floor must block creation")
	}
	if !om.ShouldCreate("SHA256", 0.002, true) {
		t.Fatalf("expected creation allowed")
	}

	om.Add("o1", OrderStrategy{Algorithm: "SHA256"})
	if om.ShouldCreate("SHA256", 0.002, true) {
		t.Fatalf("existing order for the algorithm must block creation")
	}

	om.Add("o2", OrderStrategy{Algorithm: "Scrypt"})
	if om.ShouldCreate("X11", 0.002, true) {
		t.Fatalf("full order book must block creation")
	}
}

func TestShouldUpdate(t *testing.T) {
	om := newTestOrderManager()
	om.Add("o1", OrderStrategy{Algorithm: "SHA256", TargetPrice: 0.001, MaxPrice: 0.0012})

	if !om.ShouldUpdate("o1", 0.0009) {
		t.Fatalf("price below target should trigger update")
	}
	if !om.ShouldUpdate("o1", 0.0013) {
		t.Fatalf("price above ceiling should trigger update")
	}
	if om.ShouldUpdate("o1", 0.0011) {
		t.Fatalf("price inside the band should not trigger update")
	}
	if om.ShouldUpdate("missing", 0.0009) {
		t.Fatalf("unknown order should not trigger update")
	}
}

func TestOrderTracking(t *testing.T) {
	om := newTestOrderManager()
	om.Add("o1", OrderStrategy{Algorithm: "SHA256"})

	if id, ok := om.OrderIDFor("SHA256"); !ok || id != "o1" {
		t.Fatalf("expected o1, got %s %v", id, ok)
	}
	if om.ActiveCount() != 1 {
		t.Fatalf("expected 1 active order")
	}
	om.Remove("o1")
	if om.HasOrderFor("SHA256") {
		t.Fatalf("expected order removed")
	}
}
