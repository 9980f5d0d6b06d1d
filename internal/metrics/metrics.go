// Package metrics defines the Prometheus metrics exported by the registry.
// All metrics are registered with the default registry on package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userregistry"

// Registration outcomes used as the "result" label.
const (
	ResultCreated  = "created"
	ResultConflict = "conflict"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - result: created, conflict, invalid or error
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationDuration measures how long a registration attempt takes end-to-end.
// Label:
//   - result: same values as RegistrationsTotal
var RegistrationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "registration_duration_seconds",
		Help:      "Duration of registration attempts including storage round trips.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// RequestsTotal counts handled API requests.
// Labels:
//   - transport: rest or grpc
//   - code: HTTP status code or gRPC code name
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of handled API requests, by transport and response code.",
	},
	[]string{"transport", "code"},
)
