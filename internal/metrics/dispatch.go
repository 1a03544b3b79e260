// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchdemo_dispatch_requests_total",
		Help: "Outbound dispatcher requests by operation and outcome",
	}, []string{"operation", "outcome"}) // outcome=completed|network|decode

	dispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fetchdemo_dispatch_duration_seconds",
		Help:    "Time from dispatch to settlement",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})

	dispatchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fetchdemo_dispatch_in_flight",
		Help: "Dispatcher requests issued and not yet settled",
	})

	responseStatusTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchdemo_dispatch_response_status_total",
		Help: "HTTP status classes of completed dispatcher requests",
	}, []string{"operation", "class"}) // class=2xx|3xx|4xx|5xx

	settlementsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchdemo_dispatch_settlements_dropped_total",
		Help: "Settlements discarded because their owner was gone",
	})
)

// DispatchStarted marks one outbound request as in flight.
func DispatchStarted() { dispatchInFlight.Inc() }

// DispatchSettled records the end of one outbound request.
func DispatchSettled(operation, outcome string, seconds float64) {
	dispatchInFlight.Dec()
	dispatchRequestsTotal.WithLabelValues(operation, outcome).Inc()
	dispatchDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordResponseStatus counts a completed request by status class.
func RecordResponseStatus(operation string, code int) {
	responseStatusTotal.WithLabelValues(operation, statusClass(code)).Inc()
}

// IncSettlementDropped counts a settlement that arrived after its loop stopped.
func IncSettlementDropped() { settlementsDroppedTotal.Inc() }

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
