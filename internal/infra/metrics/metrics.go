package metrics

import (
	"net/http"
	"time"

	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/usecase/commands"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the provisioner
type Metrics struct {
	registry *prometheus.Registry

	Registrations     *prometheus.CounterVec
	SweptReservations prometheus.Counter
	Payments          *prometheus.CounterVec
	HTTPRequests      *prometheus.HistogramVec
}

var _ commands.Observer = (*Metrics)(nil)

// New creates the metrics on a private registry so tests can build as many
// as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "provisioner_registrations_total",
			Help: "Registrations handled, by result",
		}, []string{"result"}),
		SweptReservations: factory.NewCounter(prometheus.CounterOpts{
			Name: "provisioner_reservations_swept_total",
			Help: "Expired reservations removed",
		}),
		Payments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "provisioner_payments_total",
			Help: "Incoming payments handled, by outcome and how the account was specified",
		}, []string{"outcome", "source"}),
		HTTPRequests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "provisioner_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) RegistrationRecorded(result commands.RegisterResult) {
	m.Registrations.WithLabelValues(string(result)).Inc()
}

func (m *Metrics) ReservationsSwept(count int) {
	if count > 0 {
		m.SweptReservations.Add(float64(count))
	}
}

func (m *Metrics) PaymentHandled(outcome commands.PaymentOutcome, source provisioning.Source) {
	m.Payments.WithLabelValues(string(outcome), source.String()).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
