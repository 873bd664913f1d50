// Package metrics exposes Prometheus collectors for RPC traffic and ledger activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "splitledger"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	rpcRequests         *prometheus.CounterVec
	rpcDuration         *prometheus.HistogramVec
	expensesRecorded    *prometheus.CounterVec
	settlementsProposed *prometheus.HistogramVec
	settlementChanges   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Unary RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Unary RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		expensesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_recorded_total",
			Help:      "Expenses created, by split method.",
		}, []string{"method"}),
		settlementsProposed: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggested_settlements",
			Help:      "Number of transfers suggested per balance computation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}, []string{"strategy"}),
		settlementChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_transitions_total",
			Help:      "Recorded settlements entering each status.",
		}, []string{"status"}),
	}
	reg.MustRegister(
		m.rpcRequests,
		m.rpcDuration,
		m.expensesRecorded,
		m.settlementsProposed,
		m.settlementChanges,
	)
	return m
}

// ObserveRPC records one finished call. code is "ok" on success.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

func (m *Metrics) ExpenseRecorded(method string) {
	if m == nil {
		return
	}
	m.expensesRecorded.WithLabelValues(method).Inc()
}

func (m *Metrics) SettlementsSuggested(strategy string, n int) {
	if m == nil {
		return
	}
	m.settlementsProposed.WithLabelValues(strategy).Observe(float64(n))
}

func (m *Metrics) SettlementTransition(status string) {
	if m == nil {
		return
	}
	m.settlementChanges.WithLabelValues(status).Inc()
}
