// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts request outcomes and security-relevant denials.
type Collector struct {
	httpStatus      *prometheus.CounterVec
	denials         *prometheus.CounterVec
	signingFailures prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clipship_http_status_total",
			Help: "HTTP responses by status code",
		}, []string{"status_code"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clipship_denials_total",
			Help: "Forbidden or quota-denied outcomes by operation",
		}, []string{"operation"}),
		signingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clipship_signing_failures_total",
			Help: "Signed URL issuance failures",
		}),
	}

	reg.MustRegister(c.httpStatus, c.denials, c.signingFailures)
	return c
}

func (c *Collector) RecordHTTPStatus(code int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (c *Collector) RecordDenial(operation string) {
	c.denials.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordSigningFailure() {
	c.signingFailures.Inc()
}

// Handler exposes the registry in Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
