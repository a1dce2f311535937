package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	netProfit      *prometheus.GaugeVec
	sourceHealthy  *prometheus.GaugeVec
	activeOrders   prometheus.Gauge
	rechargesTotal prometheus.Counter
	orderActions   *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hasharb_fetches_total",
				Help: "Total data fetches by category, source and result",
			},
			[]string{"category", "source", "result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hasharb_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		netProfit: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hasharb_net_profit_btc",
				Help: "Last computed net profit per algorithm in BTC/day",
			},
			[]string{"algorithm"},
		),
		sourceHealthy: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hasharb_source_healthy",
				Help: "Source health state, 1 healthy, 0 otherwise",
			},
			[]string{"source"},
		),
		activeOrders: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "hasharb_active_orders",
				Help: "Number of currently active rental orders",
			},
		),
		rechargesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hasharb_recharges_total",
				Help: "Total number of wallet recharges executed",
			},
		),
		orderActions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hasharb_order_actions_total",
				Help: "Order actions by type (create, update, cancel)",
			},
			[]string{"action"},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hasharb_cycle_duration_seconds",
				Help:    "Duration of strategy cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordFetch records a fetch attempt for a data category against a source.
func (r *Recorder) RecordFetch(category, source, result string) {
	r.fetchesTotal.WithLabelValues(category, source, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordNetProfit records the last net profit computed for an algorithm.
func (r *Recorder) RecordNetProfit(algorithm string, profit float64) {
	r.netProfit.WithLabelValues(algorithm).Set(profit)
}

// RecordSourceHealth records the health state of a data source.
func (r *Recorder) RecordSourceHealth(source string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1.0
	}
	r.sourceHealthy.WithLabelValues(source).Set(v)
}

// RecordActiveOrders records the current active order count.
func (r *Recorder) RecordActiveOrders(n int) {
	r.activeOrders.Set(float64(n))
}

// RecordRecharge records a completed wallet recharge.
func (r *Recorder) RecordRecharge() {
	r.rechargesTotal.Inc()
}

// RecordOrderAction records an order lifecycle action.
func (r *Recorder) RecordOrderAction(action string) {
	r.orderActions.WithLabelValues(action).Inc()
}

// RecordCycleDuration records strategy cycle duration in seconds.
func (r *Recorder) RecordCycleDuration(seconds float64) {
	r.cycleDuration.Observe(seconds)
}
