package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Leganyst/booking-scheduler/internal/calendar"
)

// Collector держит все метрики сервиса на собственном реестре,
// чтобы тесты не делили глобальный.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	AdmissionsTotal   *prometheus.CounterVec
	AdmissionDuration *prometheus.HistogramVec

	StoreCallDuration *prometheus.HistogramVec
	StoreErrorsTotal  *prometheus.CounterVec

	GRPCRequestsTotal *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		AdmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "decisions_total",
			Help:      "Appointment admission decisions by operation and outcome (admitted, rejection kind, infrastructure_error).",
		}, []string{"op", "outcome"}),

		AdmissionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "duration_seconds",
			Help:      "Appointment admission latency distribution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"op"}),

		StoreCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Store call latency distribution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"operation"}),

		StoreErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Failed store calls by operation.",
		}, []string{"operation"}),

		GRPCRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Total number of gRPC requests by method and status code.",
		}, []string{"method", "code"}),
	}
}

// ObserveAdmission реализует calendar.AdmissionObserver.
func (c *Collector) ObserveAdmission(op, outcome string, elapsed time.Duration) {
	c.AdmissionsTotal.WithLabelValues(op, outcome).Inc()
	c.AdmissionDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveStoreCall реализует repository.StoreObserver.
// «Не найдено» — нормальный ответ, ошибкой не считается.
func (c *Collector) ObserveStoreCall(op string, elapsed time.Duration, err error) {
	c.StoreCallDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil && !isNotFound(err) {
		c.StoreErrorsTotal.WithLabelValues(op).Inc()
	}
}

func (c *Collector) ObserveGRPC(method, code string) {
	c.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func isNotFound(err error) bool {
	return errors.Is(err, calendar.ErrNotFound)
}
