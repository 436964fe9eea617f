package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "site"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	pageRender     *prom.HistogramVec
	highlights     *prom.CounterVec
	postCache      *prom.CounterVec
	contentReloads *prom.CounterVec
	postCount      prom.Gauge
	httpDuration   *prom.HistogramVec
	httpRequests   *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		pageRender: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_render_duration_seconds",
			Help:      "Duration of page renders by page kind",
			Buckets:   prom.DefBuckets,
		}, []string{"page", "result"}),
		highlights: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "highlight_total",
			Help:      "Code blocks highlighted by language and outcome",
		}, []string{"language", "result"}),
		postCache: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "post_cache_lookups_total",
			Help:      "Rendered post cache lookups by outcome",
		}, []string{"result"}),
		contentReloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "content_reloads_total",
			Help:      "Content store reloads by outcome",
		}, []string{"result"}),
		postCount: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "posts",
			Help:      "Number of posts currently loaded",
		}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prom.DefBuckets,
		}, []string{"method", "route"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(pr.pageRender, pr.highlights, pr.postCache, pr.contentReloads, pr.postCount, pr.httpDuration, pr.httpRequests)
	return pr
}

func (p *PrometheusRecorder) ObservePageRender(page string, d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.pageRender.WithLabelValues(page, string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncHighlight(language string, result ResultLabel) {
	if p == nil {
		return
	}
	p.highlights.WithLabelValues(language, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPostCache(hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.postCache.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) IncContentReload(result ResultLabel) {
	if p == nil {
		return
	}
	p.contentReloads.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetPostCount(n int) {
	if p == nil {
		return
	}
	p.postCount.Set(float64(n))
}

func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
