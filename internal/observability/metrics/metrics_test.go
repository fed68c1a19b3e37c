package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveBooking("confirmed")
	m.ObserveBooking("conflict")
	m.ObserveInvocation("book_appointment_slot")
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("confirmed")
	m.ObserveInvocation("get_doctor_timeslots")
}
