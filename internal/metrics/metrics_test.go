package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRPC("/splitledger.v1.GroupService/GetGroup", "ok", 5*time.Millisecond)
	m.ObserveRPC("/splitledger.v1.GroupService/GetGroup", "ok", 7*time.Millisecond)
	m.ObserveRPC("/splitledger.v1.GroupService/GetGroup", "not_found", time.Millisecond)
	m.ExpenseRecorded("equal")
	m.SettlementTransition("completed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues("/splitledger.v1.GroupService/GetGroup", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues("/splitledger.v1.GroupService/GetGroup", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.expensesRecorded.WithLabelValues("equal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settlementChanges.WithLabelValues("completed")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRPC("p", "ok", time.Second)
		m.ExpenseRecorded("equal")
		m.SettlementsSuggested("greedy", 3)
		m.SettlementTransition("cancelled")
	})
}
