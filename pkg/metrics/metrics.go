package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-коллекторов сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках передается nil.
type Metrics struct {
	serviceName string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbConnections   *prometheus.GaugeVec

	bookingsTotal      *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	refundsTotal       *prometheus.CounterVec
	outboxEventsTotal  *prometheus.CounterVec
}

// New регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в переданном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		serviceName: serviceName,

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		dbQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation", "status"}),

		dbConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database connection pool state",
		}, []string{"service", "state"}),

		bookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_bookings_total",
			Help: "Booking attempts by result",
		}, []string{"service", "result"}),

		cancellationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_cancellations_total",
			Help: "Cancellation attempts by result",
		}, []string{"service", "result"}),

		refundsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_refunds_total",
			Help: "Refunds issued through the payment gateway by kind",
		}, []string{"service", "kind"}),

		outboxEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_outbox_events_total",
			Help: "Outbox events processed by the publisher",
		}, []string{"service", "status"}),
	}
}

// ObserveHTTPRequest фиксирует завершенный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует длительность SQL запроса
func (m *Metrics) ObserveDBQuery(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.dbQueryDuration.WithLabelValues(m.serviceName, operation, status).Observe(duration.Seconds())
}

// SetDBConnections обновляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues(m.serviceName, "open").Set(float64(open))
	m.dbConnections.WithLabelValues(m.serviceName, "in_use").Set(float64(inUse))
	m.dbConnections.WithLabelValues(m.serviceName, "idle").Set(float64(idle))
}

// IncBooking считает попытку бронирования с результатом (created, unassigned, no_staff_available, ...)
func (m *Metrics) IncBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(m.serviceName, result).Inc()
}

// IncCancellation считает попытку отмены с результатом
func (m *Metrics) IncCancellation(result string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(m.serviceName, result).Inc()
}

// IncRefund считает возврат (full, partial, failed)
func (m *Metrics) IncRefund(kind string) {
	if m == nil {
		return
	}
	m.refundsTotal.WithLabelValues(m.serviceName, kind).Inc()
}

// IncOutboxEvent считает обработанное событие outbox (published, failed)
func (m *Metrics) IncOutboxEvent(status string) {
	if m == nil {
		return
	}
	m.outboxEventsTotal.WithLabelValues(m.serviceName, status).Inc()
}
