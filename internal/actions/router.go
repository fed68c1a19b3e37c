package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/careassist-ai/appointment-agent/internal/booking"
	"github.com/careassist-ai/appointment-agent/internal/directory"
	"github.com/careassist-ai/appointment-agent/internal/observability/metrics"
	"github.com/careassist-ai/appointment-agent/internal/schedule"
	"github.com/careassist-ai/appointment-agent/internal/symptoms"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

var tracer = otel.Tracer("appointment-agent/actions")

// Action group function names the agent runtime dispatches on.
const (
	FuncListDoctors  = "get_doctors_by_specialty"
	FuncGetTimeslots = "get_doctor_timeslots"
	FuncBookSlot     = "book_appointment_slot"
)

// Session attribute keys owned by this service. Caller-supplied keys are
// always copied through untouched.
const (
	attrSpecialty = "current_specialty"
	attrSymptoms  = "symptoms_summary"
	attrSessionID = "session_id"
)

const internalErrorMessage = "Internal server error occurred. Please try again later."

type doctorDirectory interface {
	GetByID(ctx context.Context, doctorID string) (*directory.Doctor, error)
	FindByName(ctx context.Context, name string) (*directory.Doctor, error)
	List(ctx context.Context, specialty, location string) ([]directory.Doctor, error)
}

type slotSource interface {
	NextAvailable(ctx context.Context, doctorID string, limit int) ([]string, error)
}

type booker interface {
	Book(ctx context.Context, req booking.Request) booking.Result
}

type insightSource interface {
	Summary(ctx context.Context, sessionID string) string
}

// Router is the stateless per-turn dispatcher. All conversational continuity
// lives in the session attributes the caller supplies and receives back;
// nothing is held between invocations.
type Router struct {
	doctors   doctorDirectory
	slots     slotSource
	booker    booker
	insights  insightSource
	detector  *symptoms.Detector
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	slotLimit int
}

// NewRouter wires the router's collaborators.
func NewRouter(doctors doctorDirectory, slots slotSource, bk booker, insights insightSource, detector *symptoms.Detector, m *metrics.BookingMetrics, logger *logging.Logger) *Router {
	if doctors == nil || slots == nil || bk == nil {
		panic("actions: doctors, slots, and booker cannot be nil")
	}
	if detector == nil {
		detector = symptoms.NewDetector(logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Router{
		doctors:   doctors,
		slots:     slots,
		booker:    bk,
		insights:  insights,
		detector:  detector,
		metrics:   m,
		logger:    logger,
		slotLimit: schedule.DefaultSlotLimit,
	}
}

// WithSlotLimit overrides how many upcoming slots listings include.
func (r *Router) WithSlotLimit(limit int) *Router {
	if limit > 0 {
		r.slotLimit = limit
	}
	return r
}

// Handle processes one conversational turn. It never lets a fault escape:
// any panic or unparsable request degrades to a generic error body inside a
// well-formed envelope.
func (r *Router) Handle(ctx context.Context, inv Invocation) (resp Response) {
	ctx, span := tracer.Start(ctx, "actions.handle")
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic while handling invocation", "panic", rec, "function", inv.Function)
			resp = r.envelope(inv, inv.SessionAttributes, internalErrorMessage)
		}
	}()

	span.SetAttributes(attribute.String("actions.function", inv.Function))
	r.metrics.ObserveInvocation(inv.Function)

	session := copyAttributes(inv.SessionAttributes)
	sessionID := session[attrSessionID]
	if sessionID == "" {
		sessionID = inv.SessionID
	}

	params := inv.Parameters
	specialty := paramValue(params, "specialty")
	location := paramValue(params, "location")
	doctorID := paramValue(params, "doctor_id")
	doctorName := paramValue(params, "doctor_name")
	selectedSlot := paramValue(params, "selected_slot")

	var body string
	switch {
	case inv.Function == FuncListDoctors && specialty != "" && location != "":
		body = r.listDoctors(ctx, specialty, location, inv.InputText, session)

	case inv.Function == FuncGetTimeslots && (doctorID != "" || doctorName != ""):
		body = r.listTimeslots(ctx, doctorID, doctorName)

	case inv.Function == FuncBookSlot && selectedSlot != "" && (doctorID != "" || doctorName != ""):
		body = r.bookSlot(ctx, doctorID, doctorName, selectedSlot, sessionID, session, params)

	default:
		r.logger.Warn("missing or invalid parameters", "function", inv.Function)
		body = fmt.Sprintf("Missing or invalid parameters for function '%s'. Please provide the required parameters.", inv.Function)
	}

	return r.envelope(inv, session, body)
}

// listDoctors returns doctors matching specialty and location, each with its
// current availability attached, and records the working specialty and
// symptom summary in the session.
func (r *Router) listDoctors(ctx context.Context, specialty, location, inputText string, session map[string]string) string {
	session[attrSpecialty] = specialty
	if session[attrSymptoms] == "" {
		session[attrSymptoms] = symptoms.DefaultComplaint(specialty)
	}
	// A direct symptom report beats the specialty default, but never replaces
	// an earlier attributed quote.
	if !strings.HasPrefix(session[attrSymptoms], "Patient reported:") {
		if captured, ok := r.detector.Capture(ctx, inputText); ok {
			session[attrSymptoms] = captured
		}
	}

	doctors, err := r.doctors.List(ctx, specialty, location)
	if err != nil {
		r.logger.Error("doctor listing failed", "error", err, "specialty", specialty, "location", location)
		return internalErrorMessage
	}

	listings := make([]doctorListing, 0, len(doctors))
	for _, doc := range doctors {
		slots, err := r.slots.NextAvailable(ctx, doc.DoctorID, r.slotLimit)
		if err != nil {
			r.logger.Error("availability lookup failed", "error", err, "doctor_id", doc.DoctorID)
			slots = []string{}
		}
		listings = append(listings, doctorListing{
			DoctorID:      doc.DoctorID,
			Name:          doc.Name,
			Specialty:     doc.Specialty,
			Location:      doc.Location,
			NextTimeslots: slots,
		})
	}

	return mustJSON(map[string][]doctorListing{"doctors": listings})
}

// listTimeslots returns the current availability for one doctor, resolving
// by name when no id was supplied.
func (r *Router) listTimeslots(ctx context.Context, doctorID, doctorName string) string {
	doctorID, doctorName, err := r.resolveDoctor(ctx, doctorID, doctorName)
	if err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			return "Doctor not found. Please try again."
		}
		r.logger.Error("doctor resolution failed", "error", err)
		return internalErrorMessage
	}

	slots, err := r.slots.NextAvailable(ctx, doctorID, r.slotLimit)
	if err != nil {
		r.logger.Error("availability lookup failed", "error", err, "doctor_id", doctorID)
		return internalErrorMessage
	}

	return mustJSON(timeslotListing{
		DoctorID:      doctorID,
		DoctorName:    doctorName,
		NextTimeslots: slots,
	})
}

// bookSlot claims the selected slot and renders either the confirmation
// narrative or the failure's message.
func (r *Router) bookSlot(ctx context.Context, doctorID, doctorName, selectedSlot, sessionID string, session map[string]string, params []Parameter) string {
	doctorID, doctorName, err := r.resolveDoctor(ctx, doctorID, doctorName)
	if err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			return "Doctor not found. Unable to book appointment."
		}
		r.logger.Error("doctor resolution failed", "error", err)
		return internalErrorMessage
	}

	specialty := session[attrSpecialty]
	if specialty == "" {
		if doc, err := r.doctors.GetByID(ctx, doctorID); err == nil {
			specialty = doc.Specialty
			if doctorName == "" {
				doctorName = doc.Name
			}
		} else {
			r.logger.Warn("could not resolve specialty from doctor record", "error", err, "doctor_id", doctorID)
			specialty = "General"
		}
	}

	summary := session[attrSymptoms]
	if summary == "" {
		summary = symptoms.DefaultComplaint(specialty)
	}

	reportInsight := ""
	if r.insights != nil {
		reportInsight = r.insights.Summary(ctx, sessionID)
	}

	result := r.booker.Book(ctx, booking.Request{
		DoctorID:        doctorID,
		DoctorName:      doctorName,
		SelectedSlot:    selectedSlot,
		PatientName:     paramValue(params, "user_name"),
		PatientEmail:    paramValue(params, "user_email"),
		SymptomsSummary: summary,
		Specialty:       specialty,
		SessionID:       sessionID,
		ReportInsight:   reportInsight,
	})
	if !result.Success {
		return result.Message
	}

	emailStatus := ""
	if result.NotificationSent {
		emailStatus = " A confirmation email has been sent to your email address."
	}
	return fmt.Sprintf(
		"You have successfully scheduled Slot %s: %s with %s (%s).\n"+
			"Your appointment confirmation ID is: %s\n"+
			"Your appointment has been confirmed and the slot has been reserved for you.%s\n"+
			"If you need further assistance, please let me know.",
		result.SlotNumber, result.AppointmentDateTime, result.DoctorName, specialty,
		result.ConfirmationID, emailStatus,
	)
}

// resolveDoctor prefers an explicit id; otherwise falls back to name lookup.
func (r *Router) resolveDoctor(ctx context.Context, doctorID, doctorName string) (string, string, error) {
	if doctorID != "" {
		return doctorID, doctorName, nil
	}
	doc, err := r.doctors.FindByName(ctx, doctorName)
	if err != nil {
		return "", "", err
	}
	return doc.DoctorID, doc.Name, nil
}

func (r *Router) envelope(inv Invocation, session map[string]string, body string) Response {
	messageVersion := inv.MessageVersion
	if messageVersion == 0 {
		messageVersion = 1
	}
	return Response{
		Response: responseBody{
			ActionGroup: inv.ActionGroup,
			Function:    inv.Function,
			FunctionResponse: functionResponse{
				ResponseBody: responseContent{
					Text: textBody{Body: body},
				},
			},
		},
		MessageVersion:    messageVersion,
		SessionAttributes: session,
	}
}

func copyAttributes(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func paramValue(params []Parameter, name string) string {
	for _, p := range params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// All listing types are plain structs of strings; this cannot fail.
		panic(fmt.Sprintf("actions: failed to marshal response body: %v", err))
	}
	return string(data)
}
