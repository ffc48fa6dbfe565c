package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus instruments for the platform service.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	validationsTotal  *prometheus.CounterVec
	validationIssues  *prometheus.CounterVec
	dashboardDuration prometheus.Histogram

	cacheLookups *prometheus.CounterVec

	partnerRequestsTotal *prometheus.CounterVec
	partnerFallbacks     prometheus.Counter

	realtimeClients prometheus.GaugeFunc
}

// NewCollector registers the platform's instruments on the default registry.
// connectedClients reports the current realtime socket count; pass nil to
// skip that gauge.
func NewCollector(connectedClients func() float64) *Collector {
	c := &Collector{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorlink_http_requests_total",
			Help: "HTTP requests by method, path and status code",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creatorlink_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		validationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorlink_consistency_validations_total",
			Help: "Cross-source validations by outcome",
		}, []string{"result"}),
		validationIssues: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorlink_consistency_issues_total",
			Help: "Validation issues by type and severity",
		}, []string{"type", "severity"}),
		dashboardDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "creatorlink_dashboard_build_duration_seconds",
			Help:    "End to end dashboard assembly latency",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorlink_cache_lookups_total",
			Help: "Response cache lookups by outcome",
		}, []string{"outcome"}),
		partnerRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorlink_partner_requests_total",
			Help: "Partner network requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		partnerFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creatorlink_partner_fallbacks_total",
			Help: "Dashboard builds that fell back to local data",
		}),
	}
	if connectedClients != nil {
		c.realtimeClients = promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "creatorlink_realtime_clients",
			Help: "Currently connected realtime clients",
		}, connectedClients)
	}
	return c
}

// RecordValidation counts one validation outcome plus its issues.
func (c *Collector) RecordValidation(consistent bool, errorTypes, warningTypes []string) {
	result := "consistent"
	if !consistent {
		result = "inconsistent"
	}
	c.validationsTotal.WithLabelValues(result).Inc()
	for _, t := range errorTypes {
		c.validationIssues.WithLabelValues(t, "error").Inc()
	}
	for _, t := range warningTypes {
		c.validationIssues.WithLabelValues(t, "warning").Inc()
	}
}

// ObserveDashboardBuild records one end-to-end dashboard assembly.
func (c *Collector) ObserveDashboardBuild(d time.Duration) {
	c.dashboardDuration.Observe(d.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func (c *Collector) RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	c.cacheLookups.WithLabelValues(outcome).Inc()
}

// RecordPartnerRequest counts a partner API call.
func (c *Collector) RecordPartnerRequest(endpoint string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.partnerRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// RecordPartnerFallback counts a dashboard build served from local data.
func (c *Collector) RecordPartnerFallback() {
	c.partnerFallbacks.Inc()
}

// GinMiddleware instruments every request routed through gin.
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		c.httpRequestsTotal.WithLabelValues(ctx.Request.Method, path, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestDuration.WithLabelValues(ctx.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
