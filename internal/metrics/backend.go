// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var backendUserOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fetchdemo_backend_user_operations_total",
	Help: "Reference backend user store operations by outcome",
}, []string{"operation", "outcome"}) // outcome=ok|not_found|invalid|error

// IncBackendUserOp counts one user store operation on the reference backend.
func IncBackendUserOp(operation, outcome string) {
	backendUserOpsTotal.WithLabelValues(operation, outcome).Inc()
}
