package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors exposed on /metrics
type Metrics struct {
	gatherer           prometheus.Gatherer
	requests           *prometheus.CounterVec
	duration           *prometheus.HistogramVec
	verificationEmails *prometheus.CounterVec
}

// NewMetrics registers the HTTP and mail delivery collectors on reg
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sudays",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sudays",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		verificationEmails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sudays",
			Name:      "verification_emails_total",
			Help:      "Verification emails handed to the mail provider by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.requests, m.duration, m.verificationEmails)
	return m
}

// Middleware records request count and latency. Unmatched routes are
// grouped under a single label to bound cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveVerificationEmail counts one delivery attempt
func (m *Metrics) ObserveVerificationEmail(sent bool) {
	if m == nil {
		return
	}
	result := "sent"
	if !sent {
		result = "failed"
	}
	m.verificationEmails.WithLabelValues(result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
