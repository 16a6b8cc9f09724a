package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "course_service"

// Metrics owns a dedicated registry so tests can build as many as they need
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter       *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	EnrollmentsCreated   *prometheus.CounterVec
	CertificatesIssued   prometheus.Counter
	PaymentVerifications *prometheus.CounterVec
	NotificationsDropped *prometheus.CounterVec
	NotificationsFailed  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		EnrollmentsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrollments_created_total",
				Help:      "Enrollments created, by source (free or paid)",
			},
			[]string{"source"},
		),
		CertificatesIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "certificates_issued_total",
				Help:      "Certificates minted",
			},
		),
		PaymentVerifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_verifications_total",
				Help:      "Payment oracle verifications, by result",
			},
			[]string{"result"},
		),
		NotificationsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_dropped_total",
				Help:      "Notification events dropped before reaching the bus",
			},
			[]string{"reason"},
		),
		NotificationsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_failed_total",
				Help:      "Notification emails that could not be delivered",
			},
			[]string{"event_type"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDuration,
		m.EnrollmentsCreated,
		m.CertificatesIssued,
		m.PaymentVerifications,
		m.NotificationsDropped,
		m.NotificationsFailed,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		m.RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Recorder is the narrow view the services need. A nil *Metrics records nothing.
type Recorder interface {
	EnrollmentCreated(source string)
	CertificateIssued()
	PaymentVerified(result string)
}

func (m *Metrics) EnrollmentCreated(source string) {
	if m == nil {
		return
	}
	m.EnrollmentsCreated.WithLabelValues(source).Inc()
}

func (m *Metrics) CertificateIssued() {
	if m == nil {
		return
	}
	m.CertificatesIssued.Inc()
}

func (m *Metrics) PaymentVerified(result string) {
	if m == nil {
		return
	}
	m.PaymentVerifications.WithLabelValues(result).Inc()
}

func (m *Metrics) NotificationDropped(reason string) {
	if m == nil {
		return
	}
	m.NotificationsDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) NotificationFailed(eventType string) {
	if m == nil {
		return
	}
	m.NotificationsFailed.WithLabelValues(eventType).Inc()
}
