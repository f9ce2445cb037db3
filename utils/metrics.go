package utils

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	bookingTransitions   *prometheus.CounterVec
	penalties            *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking lifecycle transitions that committed.",
		}, []string{"transition"}),
		penalties: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reliability_penalties_total",
			Help: "Reliability penalties applied to providers.",
		}, []string{"kind"}),
		notificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Notifications that could not be stored or queued.",
		}, []string{"stage"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.bookingTransitions, m.penalties, m.notificationFailures, m.httpDuration)
	return m
}

func (m *Metrics) BookingTransition(name string) {
	if m != nil {
		m.bookingTransitions.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) Penalty(kind string) {
	if m != nil {
		m.penalties.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) NotificationFailure(stage string) {
	if m != nil {
		m.notificationFailures.WithLabelValues(stage).Inc()
	}
}

// GinMiddleware observes request latency by route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
