package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latencies per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, labeled by route, method and status.",
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// ObserveRequest records one served request.
func (h *HTTPMetrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	route = normalizeLabel(route)
	h.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	h.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// DomainMetrics counts economic lifecycle events.
type DomainMetrics struct {
	settlements     *prometheus.CounterVec
	arbitrations    *prometheus.CounterVec
	outboxPublished prometheus.Counter
	outboxFailed    prometheus.Counter
}

// NewDomainMetrics registers the lifecycle counters on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlements_total",
		Help: "Completed settlements, labeled by settlement type.",
	}, []string{"type"})
	arbitrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arbitrations_total",
		Help: "Closed disputes, labeled by decision.",
	}, []string{"decision"})
	outboxPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events successfully published.",
	})
	outboxFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox publish attempts that failed.",
	})
	reg.MustRegister(settlements, arbitrations, outboxPublished, outboxFailed)
	return &DomainMetrics{
		settlements:     settlements,
		arbitrations:    arbitrations,
		outboxPublished: outboxPublished,
		outboxFailed:    outboxFailed,
	}
}

// IncSettlement increments the settlement counter for the given type.
func (d *DomainMetrics) IncSettlement(settlementType string) {
	if d == nil || d.settlements == nil {
		return
	}
	d.settlements.WithLabelValues(normalizeLabel(settlementType)).Inc()
}

// IncArbitration increments the arbitration counter for the given decision.
func (d *DomainMetrics) IncArbitration(decision string) {
	if d == nil || d.arbitrations == nil {
		return
	}
	d.arbitrations.WithLabelValues(normalizeLabel(decision)).Inc()
}

// IncOutboxPublished increments the published-events counter.
func (d *DomainMetrics) IncOutboxPublished() {
	if d == nil || d.outboxPublished == nil {
		return
	}
	d.outboxPublished.Inc()
}

// IncOutboxFailed increments the failed-publish counter.
func (d *DomainMetrics) IncOutboxFailed() {
	if d == nil || d.outboxFailed == nil {
		return
	}
	d.outboxFailed.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
