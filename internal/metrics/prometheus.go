package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements the Collector interface using
// Prometheus metrics.
type PrometheusCollector struct {
	// EWS request metrics
	requestsTotal    *prometheus.CounterVec
	requestsInFlight prometheus.Gauge
	requestDuration  *prometheus.HistogramVec

	// Remediation metrics
	remediationsTotal *prometheus.CounterVec
}

// NewPrometheusCollector creates a new PrometheusCollector with all
// metrics registered.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phishfry_ews_requests_total",
			Help: "Total number of EWS requests issued.",
		}, []string{"operation", "result"}),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "phishfry_ews_requests_in_flight",
			Help: "Number of EWS requests currently in flight.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "phishfry_ews_request_duration_seconds",
			Help:    "Duration of EWS requests in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),

		remediationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phishfry_mailboxes_remediated_total",
			Help: "Total number of individual mailboxes acted on.",
		}, []string{"action", "result"}),
	}

	// Register all metrics
	reg.MustRegister(
		c.requestsTotal,
		c.requestsInFlight,
		c.requestDuration,
		c.remediationsTotal,
	)

	return c
}

// RequestStarted increments the in-flight gauge.
func (c *PrometheusCollector) RequestStarted(operation string) {
	c.requestsInFlight.Inc()
}

// RequestCompleted records the request outcome and duration.
func (c *PrometheusCollector) RequestCompleted(operation, result string, duration time.Duration) {
	c.requestsInFlight.Dec()
	c.requestsTotal.WithLabelValues(operation, result).Inc()
	c.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// MailboxRemediated increments the remediation counter.
func (c *PrometheusCollector) MailboxRemediated(action string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.remediationsTotal.WithLabelValues(action, result).Inc()
}

// PrometheusServer exposes the default registry over HTTP.
type PrometheusServer struct {
	server *http.Server
}

// NewPrometheusServer creates a metrics server listening on address
// and serving the exposition format at path.
func NewPrometheusServer(address, path string) *PrometheusServer {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	return &PrometheusServer{
		server: &http.Server{Addr: address, Handler: mux},
	}
}

// Start begins serving metrics until the context is canceled.
func (s *PrometheusServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown gracefully stops the metrics server.
func (s *PrometheusServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
