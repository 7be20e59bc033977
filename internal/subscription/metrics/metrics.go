// Package metrics provides observability for the subscription module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks registration and confirmation outcomes plus the latency of
// the registration critical path.
type Metrics struct {
	SubscribersCreated   prometheus.Counter
	SubscribersConfirmed prometheus.Counter
	DeliveryFailures     prometheus.Counter
	RegisterDuration     prometheus.Histogram
}

// New creates a Metrics instance with all subscription metrics registered.
func New() *Metrics {
	return &Metrics{
		SubscribersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bulletin_subscribers_created_total",
			Help: "Total number of pending subscribers persisted",
		}),
		SubscribersConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bulletin_subscribers_confirmed_total",
			Help: "Total number of subscriptions confirmed via token",
		}),
		DeliveryFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bulletin_confirmation_email_failures_total",
			Help: "Total number of confirmation emails that failed to send",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bulletin_register_duration_seconds",
			Help:    "Duration of the full registration workflow",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementSubscribersCreated records a committed pending subscriber.
func (m *Metrics) IncrementSubscribersCreated() {
	if m != nil {
		m.SubscribersCreated.Inc()
	}
}

// IncrementSubscribersConfirmed records a successful confirmation.
func (m *Metrics) IncrementSubscribersConfirmed() {
	if m != nil {
		m.SubscribersConfirmed.Inc()
	}
}

// IncrementDeliveryFailures records a failed confirmation email send.
func (m *Metrics) IncrementDeliveryFailures() {
	if m != nil {
		m.DeliveryFailures.Inc()
	}
}

// ObserveRegister records the duration of a registration attempt.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	if m != nil {
		m.RegisterDuration.Observe(time.Since(start).Seconds())
	}
}
