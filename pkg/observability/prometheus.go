package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "safephase"

// Prometheus implements every hook family on top of Prometheus collectors.
type Prometheus struct {
	registry *prometheus.Registry

	enumerations  *prometheus.CounterVec
	enumDuration  prometheus.Histogram
	phaseCount    prometheus.Histogram
	inflight      prometheus.Gauge
	cacheRequests *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheus registers the collectors on reg. A nil reg creates a fresh
// registry with the Go and process collectors attached.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	f := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		enumerations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enumerations_total",
			Help:      "Safe-phase enumerations by outcome.",
		}, []string{"outcome"}),
		enumDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enumeration_duration_seconds",
			Help:      "Time spent enumerating one junction.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		phaseCount: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phases_per_junction",
			Help:      "Number of safe phases produced per junction.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "enumerations_inflight",
			Help:      "Enumerations currently running.",
		}),
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the registry the collectors live in.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *Prometheus) OnEnumerateStart(context.Context, string, int) {
	p.inflight.Inc()
}

func (p *Prometheus) OnEnumerateComplete(_ context.Context, _ string, _, phases, _ int, d time.Duration, err error) {
	p.inflight.Dec()
	if err != nil {
		p.enumerations.WithLabelValues("error").Inc()
		return
	}
	p.enumerations.WithLabelValues("ok").Inc()
	p.enumDuration.Observe(d.Seconds())
	p.phaseCount.Observe(float64(phases))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ EnumerationHooks = (*Prometheus)(nil)
	_ CacheHooks       = (*Prometheus)(nil)
	_ HTTPHooks        = (*Prometheus)(nil)
)
