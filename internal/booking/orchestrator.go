package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/careassist-ai/appointment-agent/internal/insight"
	"github.com/careassist-ai/appointment-agent/internal/notify"
	"github.com/careassist-ai/appointment-agent/internal/observability/metrics"
	"github.com/careassist-ai/appointment-agent/internal/schedule"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

var tracer = otel.Tracer("appointment-agent/booking")

// displayTimeLayout is how appointment times are shown to patients.
const displayTimeLayout = "January 2, 2006 at 3:04 PM"

// SlotSource yields the current bookable view for a doctor.
type SlotSource interface {
	NextAvailable(ctx context.Context, doctorID string, limit int) ([]string, error)
}

// SlotRemover claims a single slot by its timestamp value.
type SlotRemover interface {
	RemoveSlot(ctx context.Context, doctorID, timestamp string) (string, error)
}

// Request carries everything needed to book one slot for a patient.
type Request struct {
	DoctorID        string
	DoctorName      string
	SelectedSlot    string
	PatientName     string
	PatientEmail    string
	SymptomsSummary string
	Specialty       string
	SessionID       string
	ReportInsight   string
}

// Result is the value type describing a booking attempt. Success is defined
// purely by slot removal; NotificationSent tracks the confirmation handoff
// independently.
type Result struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	DoctorName          string `json:"doctor_name,omitempty"`
	SlotNumber          string `json:"slot_number,omitempty"`
	AppointmentDateTime string `json:"appointment_datetime,omitempty"`
	Timestamp           string `json:"timestamp,omitempty"`
	ConfirmationID      string `json:"confirmation_id,omitempty"`
	NotificationSent    bool   `json:"notification_sent"`
}

// Orchestrator books appointment slots. It always recomputes the slot view
// immediately before claiming, so ordinals from stale listings can never
// remove the wrong slot.
type Orchestrator struct {
	slots     SlotSource
	remover   SlotRemover
	publisher notify.Publisher
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	slotLimit int
}

// NewOrchestrator wires the orchestrator's collaborators.
func NewOrchestrator(slots SlotSource, remover SlotRemover, publisher notify.Publisher, m *metrics.BookingMetrics, logger *logging.Logger) *Orchestrator {
	if slots == nil {
		panic("booking: slot source cannot be nil")
	}
	if remover == nil {
		panic("booking: slot remover cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		slots:     slots,
		remover:   remover,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		slotLimit: schedule.DefaultSlotLimit,
	}
}

// WithSlotLimit overrides how many slots the booking view considers.
func (o *Orchestrator) WithSlotLimit(limit int) *Orchestrator {
	if limit > 0 {
		o.slotLimit = limit
	}
	return o
}

// Book claims the slot at the requested ordinal against a freshly computed
// view of the doctor's availability.
func (o *Orchestrator) Book(ctx context.Context, req Request) Result {
	ctx, span := tracer.Start(ctx, "booking.book")
	defer span.End()

	view, err := o.slots.NextAvailable(ctx, req.DoctorID, o.slotLimit)
	if err != nil {
		o.logger.Error("failed to compute slot view", "error", err, "doctor_id", req.DoctorID)
		o.observe(span, "error")
		return Result{Success: false, Message: "An error occurred while booking the appointment. Please try again."}
	}
	if len(view) == 0 {
		o.observe(span, "no_availability")
		return Result{Success: false, Message: "No available timeslots found for this doctor."}
	}

	ordinal, err := strconv.Atoi(strings.TrimSpace(req.SelectedSlot))
	if err != nil {
		o.observe(span, "invalid_selection")
		return Result{Success: false, Message: "Invalid slot number format. Please provide a number."}
	}
	if ordinal < 1 || ordinal > len(view) {
		o.observe(span, "invalid_selection")
		return Result{Success: false, Message: fmt.Sprintf("Invalid slot number. Please select from 1 to %d.", len(view))}
	}

	timestamp := view[ordinal-1]
	if _, err := o.remover.RemoveSlot(ctx, req.DoctorID, timestamp); err != nil {
		if errors.Is(err, schedule.ErrSlotConflict) {
			o.observe(span, "conflict")
			return Result{Success: false, Message: "Unable to book this slot. It may have been taken by another patient. Please select a different slot."}
		}
		o.logger.Error("slot removal failed", "error", err, "doctor_id", req.DoctorID, "timestamp", timestamp)
		o.observe(span, "error")
		return Result{Success: false, Message: "An error occurred while booking the appointment. Please try again."}
	}

	formatted := timestamp
	if ts, err := time.Parse(schedule.SlotTimeLayout, timestamp); err == nil {
		formatted = ts.Format(displayTimeLayout)
	}

	confirmationID := req.SessionID
	if confirmationID == "" {
		confirmationID = strings.ToUpper(uuid.NewString()[:8])
	}

	result := Result{
		Success:             true,
		Message:             fmt.Sprintf("Successfully booked Slot %d: %s", ordinal, formatted),
		DoctorName:          orDefault(req.DoctorName, req.DoctorID),
		SlotNumber:          strconv.Itoa(ordinal),
		AppointmentDateTime: formatted,
		Timestamp:           timestamp,
		ConfirmationID:      confirmationID,
	}
	result.NotificationSent = o.sendConfirmation(ctx, req, result)

	o.observe(span, "confirmed")
	o.logger.Info("slot booked",
		"doctor_id", req.DoctorID,
		"slot_number", result.SlotNumber,
		"timestamp", timestamp,
		"confirmation_id", confirmationID,
		"notification_sent", result.NotificationSent,
	)
	return result
}

// sendConfirmation hands the confirmation to the notification pipeline.
// Failures are logged and surfaced only through the returned flag; the
// booking itself is already committed.
func (o *Orchestrator) sendConfirmation(ctx context.Context, req Request, result Result) bool {
	if o.publisher == nil {
		return false
	}

	c := notify.Confirmation{
		ConfirmationID:  result.ConfirmationID,
		PatientName:     orDefault(req.PatientName, "ABC"),
		PatientEmail:    orDefault(req.PatientEmail, "test@gmail.com"),
		SymptomsSummary: orDefault(req.SymptomsSummary, "General consultation"),
		ReportInsight:   orDefault(req.ReportInsight, insight.NotAvailable),
		Specialty:       orDefault(req.Specialty, "General"),
		DoctorName:      result.DoctorName,
		AppointmentTime: result.AppointmentDateTime,
	}
	if err := o.publisher.Publish(ctx, c); err != nil {
		o.logger.Error("confirmation publish failed", "error", err, "confirmation_id", c.ConfirmationID)
		return false
	}
	return true
}

func (o *Orchestrator) observe(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String("booking.outcome", outcome))
	o.metrics.ObserveBooking(outcome)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
