package strategy

import (
	"testing"
	"time"

	"HashArb/internal/domain/models"
)

func TestPriceHistoryBounded(t *testing.T) {
	m := NewPriceMonitor(time.Minute)
	now := time.Now()
	for i := 0; i < priceHistoryCapacity+20; i++ {
		m.AddPrice("SHA256", 0.001, "EU", now)
	}
	if got := m.HistoryLen("SHA256"); got != priceHistoryCapacity {
		t.Fatalf("expected %d samples, got %d", priceHistoryCapacity, got)
	}
}

func TestVolatilityNeedsFiveSamples(t *testing.T) {
	m := NewPriceMonitor(time.Minute)
	now := time.Now()
	for i := 0; i < 4; i++ {
		m.AddPrice("SHA256", 0.001, "EU", now)
	}
	if got := m.VolatilityRatio("SHA256"); got != 0 {
		t.Fatalf("expected zero ratio, got %v", got)
	}
	if got := m.Volatility("SHA256"); got != models.VolatilityLow {
		t.Fatalf("expected low, got %v", got)
	}
}

func TestVolatilityClasses(t *testing.T) {
	m := NewPriceMonitor(time.Minute)
	now := time.Now()
	// Flat series stays low.
	for i := 0; i < 10; i++ {
		m.AddPrice("SHA256", 0.001, "EU", now)
	}
	if got := m.Volatility("SHA256"); got != models.VolatilityLow {
		t.Fatalf("expected low, got %v", got)
	}

	// Alternating 20% swings land high.
	for i := 0; i < 10; i++ {
		price := 0.001
		if i%2 == 1 {
			price = 0.0012
		}
		m.AddPrice("Scrypt", price, "EU", now)
	}
	if got := m.Volatility("Scrypt"); got != models.VolatilityHigh {
		t.Fatalf("expected high, got %v", got)
	}
}

func TestTrend(t *testing.T) {
	m := NewPriceMonitor(time.Minute)
	now := time.Now()

	if _, ok := m.Trend("SHA256"); ok {
		t.Fatalf("expected unknown trend without samples")
	}

	prices := []float64{0.001, 0.00101, 0.00102, 0.00105, 0.0011}
	for _, p := range prices {
		m.AddPrice("SHA256", p, "EU", now)
	}
	trend, ok := m.Trend("SHA256")
	if !ok || trend != models.TrendRising {
		t.Fatalf("expected rising, got %v %v", trend, ok)
	}

	for _, p := range []float64{0.0011, 0.00105, 0.001, 0.00098, 0.00095} {
		m.AddPrice("Scrypt", p, "EU", now)
	}
	trend, ok = m.Trend("Scrypt")
	if !ok || trend != models.TrendFalling {
		t.Fatalf("expected falling, got %v %v", trend, ok)
	}
}

func TestAdaptiveInterval(t *testing.T) {
	m := NewPriceMonitor(45 * time.Second)
	if got := m.AdaptiveInterval("SHA256"); got != 45*time.Second {
		t.Fatalf("expected base interval without history, got %v", got)
	}

	now := time.Now()
	for i := 0; i < 10; i++ {
		m.AddPrice("SHA256", 0.001, "EU", now)
	}
	if got := m.AdaptiveInterval("SHA256"); got != 120*time.Second {
		t.Fatalf("expected calm interval, got %v", got)
	}
}

func TestMinAdaptiveInterval(t *testing.T) {
	m := NewPriceMonitor(time.Minute)
	if got := m.MinAdaptiveInterval(nil); got != time.Minute {
		t.Fatalf("expected base interval, got %v", got)
	}

	now := time.Now()
	for i := 0; i < 10; i++ {
		m.AddPrice("SHA256", 0.001, "EU", now)
		price := 0.001
		if i%2 == 1 {
			price = 0.0012
		}
		m.AddPrice("Scrypt", price, "EU", now)
	}
	got := m.MinAdaptiveInterval([]string{"SHA256", "Scrypt"})
	if got != 30*time.Second {
		t.Fatalf("expected the turbulent interval to win, got %v", got)
	}
}
