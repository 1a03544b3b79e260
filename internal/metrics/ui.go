// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lifecycleTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchdemo_lifecycle_transitions_total",
		Help: "Request lifecycle transitions by page slot and target state",
	}, []string{"slot", "state"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fetchdemo_sessions_active",
		Help: "UI sessions currently holding page state",
	})

	sessionsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchdemo_sessions_expired_total",
		Help: "UI sessions dropped after their idle TTL",
	})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchdemo_notifications_total",
		Help: "User-facing notifications raised by page and level",
	}, []string{"page", "level"}) // level=info|error

	inputRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchdemo_input_rejected_total",
		Help: "Form inputs rejected before dispatch",
	}, []string{"field"})

	configValidationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchdemo_config_validation_errors_total",
		Help: "Total number of configuration validation errors",
	})
)

func RecordTransition(slot, state string) {
	lifecycleTransitionsTotal.WithLabelValues(slot, state).Inc()
}

func SessionOpened() { sessionsActive.Inc() }

func SessionClosed(expired bool) {
	sessionsActive.Dec()
	if expired {
		sessionsExpiredTotal.Inc()
	}
}

func IncNotification(page, level string) { notificationsTotal.WithLabelValues(page, level).Inc() }
func IncInputRejected(field string)     { inputRejectedTotal.WithLabelValues(field).Inc() }
func IncConfigValidationError()         { configValidationErrors.Inc() }
