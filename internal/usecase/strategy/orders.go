package strategy

import (
	"math"

	"HashArb/internal/domain/models"
)

// minCreateProfit is the profit floor below which no order is worth placing.
const minCreateProfit = 0.001

// OrderStrategy is the pricing plan for one rental order.
type OrderStrategy struct {
	Algorithm        string
	Market           string
	BasePrice        float64
	TargetPrice      float64
	MaxPrice         float64 // stop-loss ceiling
	Priority         models.OrderPriority
	Amount           float64
	AdjustmentFactor float64
}

// OrderManagerConfig bounds order creation and sizing.
type OrderManagerConfig struct {
	MaxOrders      int
	MinOrderAmount float64
	MaxOrderAmount float64
}

// OrderManager decides when to place, reprice and cancel rental orders.
// At most one active order per algorithm. Owned by the strategy loop.
type OrderManager struct {
	cfg    OrderManagerConfig
	active map[string]*OrderStrategy // order ID -> strategy
}

func NewOrderManager(cfg OrderManagerConfig) *OrderManager {
	return &OrderManager{
		cfg:    cfg,
		active: make(map[string]*OrderStrategy),
	}
}

// Priority tiers an order by its net profit.
func Priority(netProfit float64) models.OrderPriority {
	switch {
	case netProfit > 0.01:
		return models.PriorityCritical
	case netProfit > 0.005:
		return models.PriorityHigh
	case netProfit > 0.001:
		return models.PriorityNormal
	default:
		return models.PriorityLow
	}
}

var priorityAdjustments = map[models.OrderPriority]float64{
	models.PriorityCritical: 1.005,
	models.PriorityHigh:     1.003,
	models.PriorityNormal:   1.001,
	models.PriorityLow:      1.0005,
}

var priorityAmountMultipliers = map[models.OrderPriority]float64{
	models.PriorityCritical: 2.0,
	models.PriorityHigh:     1.5,
	models.PriorityNormal:   1.0,
	models.PriorityLow:      0.5,
}

var adjustmentBaseFactors = map[models.OrderPriority]float64{
	models.PriorityCritical: 1.002,
	models.PriorityHigh:     1.0015,
	models.PriorityNormal:   1.001,
	models.PriorityLow:      1.0005,
}

var volatilityMultipliers = map[models.VolatilityClass]float64{
	models.VolatilityLow:    1.0,
	models.VolatilityMedium: 1.2,
	models.VolatilityHigh:   1.5,
}

// TargetPrice nudges the base price up by the priority tier, then by the
// observed trend.
func TargetPrice(basePrice float64, priority models.OrderPriority, trend models.PriceTrend, trendKnown bool) float64 {
	adjustment := priorityAdjustments[priority]
	if trendKnown {
		switch trend {
		case models.TrendRising:
			adjustment *= 1.002
		case models.TrendFalling:
			adjustment *= 0.999
		}
	}
	return basePrice * adjustment
}

// MaxPrice is the stop-loss ceiling: half of the profit margin over base,
// capped at a 10% ratio, is conceded at most.
func MaxPrice(basePrice, netProfit float64) float64 {
	if basePrice <= 0 {
		return basePrice
	}
	ratio := math.Min(netProfit/basePrice, 0.1)
	return basePrice * (1 + ratio*0.5)
}

// AdjustmentFactor combines the priority tier factor with the volatility
// multiplier for subsequent repricing steps.
func AdjustmentFactor(priority models.OrderPriority, volatility models.VolatilityClass) float64 {
	base := adjustmentBaseFactors[priority]
	mult, ok := volatilityMultipliers[volatility]
	if !ok {
		mult = 1.0
	}
	return base * mult
}

// Amount sizes the order budget from the profit level and priority tier,
// clamped to the configured bounds.
func (om *OrderManager) Amount(netProfit float64, priority models.OrderPriority) float64 {
	profitMultiplier := math.Min(netProfit*100, 10)
	amount := 0.001 * profitMultiplier * priorityAmountMultipliers[priority]
	if amount < om.cfg.MinOrderAmount {
		amount = om.cfg.MinOrderAmount
	}
	if amount > om.cfg.MaxOrderAmount {
		amount = om.cfg.MaxOrderAmount
	}
	return amount
}

// BuildStrategy assembles the full pricing plan for one candidate order.
func (om *OrderManager) BuildStrategy(algorithm, market string, basePrice, netProfit float64,
	trend models.PriceTrend, trendKnown bool, volatility models.VolatilityClass) OrderStrategy {
	priority := Priority(netProfit)
	return OrderStrategy{
		Algorithm:        algorithm,
		Market:           market,
		BasePrice:        basePrice,
		TargetPrice:      TargetPrice(basePrice, priority, trend, trendKnown),
		MaxPrice:         MaxPrice(basePrice, netProfit),
		Priority:         priority,
		Amount:           om.Amount(netProfit, priority),
		AdjustmentFactor: AdjustmentFactor(priority, volatility),
	}
}

// ShouldCreate gates order creation: valid credentials, a free order slot,
// no existing order for the algorithm, and profit above the floor.
func (om *OrderManager) ShouldCreate(algorithm string, netProfit float64, hasCredentials bool) bool {
	if !hasCredentials {
		return false
	}
	if len(om.active) >= om.cfg.MaxOrders {
		return false
	}
	if om.HasOrderFor(algorithm) {
		return false
	}
	return netProfit > minCreateProfit
}

// ShouldUpdate reports whether an active order needs repricing: the market
// moved below the target or above the stop-loss ceiling.
func (om *OrderManager) ShouldUpdate(orderID string, currentPrice float64) bool {
	strategy, ok := om.active[orderID]
	if !ok {
		return false
	}
	return currentPrice < strategy.TargetPrice || currentPrice > strategy.MaxPrice
}

// Add registers a placed order.
func (om *OrderManager) Add(orderID string, strategy OrderStrategy) {
	s := strategy
	om.active[orderID] = &s
}

// Remove drops a cancelled or expired order.
func (om *OrderManager) Remove(orderID string) {
	delete(om.active, orderID)
}

// HasOrderFor reports whether an algorithm already has an active order.
func (om *OrderManager) HasOrderFor(algorithm string) bool {
	for _, s := range om.active {
		if s.Algorithm == algorithm {
			return true
		}
	}
	return false
}

// OrderIDFor returns the active order ID for an algorithm.
func (om *OrderManager) OrderIDFor(algorithm string) (string, bool) {
	for id, s := range om.active {
		if s.Algorithm == algorithm {
			return id, true
		}
	}
	return "", false
}

// ActiveCount is the number of active orders.
func (om *OrderManager) ActiveCount() int {
	return len(om.active)
}

// Active returns a copy of the active strategies keyed by order ID.
func (om *OrderManager) Active() map[string]OrderStrategy {
	out := make(map[string]OrderStrategy, len(om.active))
	for id, s := range om.active {
		out[id] = *s
	}
	return out
}

// Strategy returns the plan for an active order.
func (om *OrderManager) Strategy(orderID string) (OrderStrategy, bool) {
	s, ok := om.active[orderID]
	if !ok {
		return OrderStrategy{}, false
	}
	return *s, true
}
