package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for booking flows.
type BookingMetrics struct {
	bookingsTotal  *prometheus.CounterVec
	invocationsTot *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_agent",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
		invocationsTot: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_agent",
			Subsystem: "actions",
			Name:      "invocations_total",
			Help:      "Total action-group invocations by function",
		}, []string{"function"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.invocationsTot)
	return m
}

// ObserveBooking records a booking attempt outcome (confirmed, conflict,
// invalid_selection, no_availability, error).
func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveInvocation records a routed action invocation.
func (m *BookingMetrics) ObserveInvocation(function string) {
	if m == nil {
		return
	}
	m.invocationsTot.WithLabelValues(function).Inc()
}
