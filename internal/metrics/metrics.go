// Package metrics exposes Prometheus instrumentation for the proxy.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nikhilbhutani/ttsproxy/internal/tts"
)

// Metrics holds the proxy's collectors on their own registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	CacheLookups     *prometheus.CounterVec
	CacheEntries     prometheus.Gauge
	RateLimitedTotal prometheus.Counter
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tts_cache_lookups_total",
			Help: "Audio cache lookups by result.",
		}, []string{"result"}), // hit, miss
		CacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tts_cache_entries",
			Help: "Entries held in the audio cache, including expired entries not yet read.",
		}),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tts_rate_limited_total",
			Help: "Synthesis requests denied by the per-client rate limiter.",
		}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tts_upstream_requests_total",
			Help: "Calls to the speech provider by provider and status code.",
		}, []string{"provider", "status"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tts_upstream_duration_seconds",
			Help:    "Speech provider call latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider"}),
	}
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}

// ObserveUpstream records one provider call. Failures are labelled with the
// upstream status they were normalized to.
func (m *Metrics) ObserveUpstream(provider string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
		var ue *tts.UpstreamError
		if errors.As(err, &ue) {
			status = ue.StatusCode
		}
	}
	m.UpstreamRequests.WithLabelValues(provider, strconv.Itoa(status)).Inc()
	m.UpstreamDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
