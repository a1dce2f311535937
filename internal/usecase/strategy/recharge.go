package strategy

import (
	"context"
	"fmt"
	"time"

	"HashArb/internal/domain/models"
	"HashArb/internal/domain/repository"
	"HashArb/pkg/util"
)

// maxRechargeAmount caps any single top-up, in BTC.
const maxRechargeAmount = 1.0

// RechargeConfig bounds automatic wallet top-ups.
type RechargeConfig struct {
	Enabled             bool
	Amount              float64
	MinBalanceThreshold float64
	MaxDailyRecharges   int
	CooldownMinutes     int
}

// RechargeManager tops up the funding wallet when the balance cannot cover
// an intended order, within daily and cooldown limits. Owned by the
// strategy loop.
type RechargeManager struct {
	cfg     RechargeConfig
	wallet  repository.Wallet
	metrics repository.Metrics
	clock   repository.Clock

	lastRecharge time.Time
	dailyCount   int
	dailyDate    time.Time
	history      []models.RechargeEvent
}

func NewRechargeManager(cfg RechargeConfig, wallet repository.Wallet, metrics repository.Metrics, clock repository.Clock) *RechargeManager {
	return &RechargeManager{
		cfg:     cfg,
		wallet:  wallet,
		metrics: metrics,
		clock:   clock,
	}
}

// ShouldRecharge decides whether a top-up is warranted for the given balance
// and required amount. The reason explains a negative decision.
func (rm *RechargeManager) ShouldRecharge(balance, required float64) (bool, string) {
	if !rm.cfg.Enabled {
		return false, "recharge disabled"
	}
	if balance >= rm.cfg.MinBalanceThreshold {
		return false, "balance above threshold"
	}
	now := rm.clock.Now()
	rm.rollDailyWindow(now)
	if rm.dailyCount >= rm.cfg.MaxDailyRecharges {
		return false, "daily recharge limit reached"
	}
	if rm.inCooldown(now) {
		return false, "recharge cooldown active"
	}
	if balance+rm.cfg.Amount < required {
		return false, "configured amount insufficient"
	}
	return true, ""
}

// Amount sizes the top-up: at least the configured amount, enough to cover
// the shortfall, never more than the hard cap.
func (rm *RechargeManager) Amount(balance, required float64) float64 {
	amount := rm.cfg.Amount
	if shortfall := required - balance; shortfall > amount {
		amount = shortfall
	}
	if amount > maxRechargeAmount {
		amount = maxRechargeAmount
	}
	return amount
}

// Execute performs one top-up. Cooldown and daily limits are re-validated so
// callers cannot bypass them between decision and execution.
func (rm *RechargeManager) Execute(ctx context.Context, balance, required float64) (models.RechargeEvent, error) {
	now := rm.clock.Now()
	rm.rollDailyWindow(now)
	if rm.dailyCount >= rm.cfg.MaxDailyRecharges {
		return models.RechargeEvent{}, fmt.Errorf("daily recharge limit %d reached", rm.cfg.MaxDailyRecharges)
	}
	if rm.inCooldown(now) {
		return models.RechargeEvent{}, fmt.Errorf("recharge cooldown until %s",
			rm.lastRecharge.Add(rm.cooldown()).Format(time.RFC3339))
	}

	amount := rm.Amount(balance, required)
	if err := rm.wallet.Recharge(ctx, amount); err != nil {
		return models.RechargeEvent{}, fmt.Errorf("wallet recharge: %w", err)
	}

	event := models.RechargeEvent{Time: now, Amount: amount, BalanceBefore: balance}
	rm.history = append(rm.history, event)
	rm.lastRecharge = now
	rm.dailyCount++
	rm.metrics.RecordRecharge()
	return event, nil
}

// History returns a copy of executed top-ups.
func (rm *RechargeManager) History() []models.RechargeEvent {
	out := make([]models.RechargeEvent, len(rm.history))
	copy(out, rm.history)
	return out
}

// DailyCount reports top-ups executed on the current calendar day.
func (rm *RechargeManager) DailyCount() int {
	rm.rollDailyWindow(rm.clock.Now())
	return rm.dailyCount
}

func (rm *RechargeManager) rollDailyWindow(now time.Time) {
	if !util.SameCalendarDay(rm.dailyDate, now) {
		rm.dailyDate = now
		rm.dailyCount = 0
	}
}

func (rm *RechargeManager) inCooldown(now time.Time) bool {
	if rm.lastRecharge.IsZero() {
		return false
	}
	return now.Sub(rm.lastRecharge) < rm.cooldown()
}

func (rm *RechargeManager) cooldown() time.Duration {
	return time.Duration(rm.cfg.CooldownMinutes) * time.Minute
}
