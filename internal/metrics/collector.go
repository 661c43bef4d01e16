package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultCreated  = "created"
	ResultUpdated  = "updated"
	ResultReplaced = "replaced"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	domainUpdates      *prometheus.CounterVec
	recordReplacements *prometheus.CounterVec
	recordsWritten     prometheus.Counter
}

// NewCollector registers the service metrics on a fresh registry, along
// with the Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdns_rest_http_requests_total",
				Help: "Total number of HTTP requests handled",
			},
			[]string{"method", "route", "status"},
		),

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdns_rest_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),

		domainUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdns_rest_domain_updates_total",
				Help: "Domain create/update requests by result",
			},
			[]string{"result"},
		),

		recordReplacements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdns_rest_record_replacements_total",
				Help: "Record set replacements by result",
			},
			[]string{"result"},
		),

		recordsWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pdns_rest_records_written_total",
				Help: "Records inserted by committed replacements",
			},
		),
	}
}

func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordDomainUpdate(result string) {
	c.domainUpdates.WithLabelValues(result).Inc()
}

func (c *Collector) RecordReplacement(result string, records int) {
	c.recordReplacements.WithLabelValues(result).Inc()
	if result == ResultReplaced {
		c.recordsWritten.Add(float64(records))
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
