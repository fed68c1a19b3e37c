package booking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/careassist-ai/appointment-agent/internal/notify"
	"github.com/careassist-ai/appointment-agent/internal/schedule"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

type fakeSlotSource struct {
	view []string
	err  error
}

func (f *fakeSlotSource) NextAvailable(ctx context.Context, doctorID string, limit int) ([]string, error) {
	return f.view, f.err
}

type fakeSlotRemover struct {
	removed []string
	err     error
}

func (f *fakeSlotRemover) RemoveSlot(ctx context.Context, doctorID, timestamp string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.removed = append(f.removed, timestamp)
	return "slot1", nil
}

type capturingPublisher struct {
	published []notify.Confirmation
	err       error
}

func (p *capturingPublisher) Publish(ctx context.Context, c notify.Confirmation) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, c)
	return nil
}

func newTestOrchestrator(slots *fakeSlotSource, remover *fakeSlotRemover, pub notify.Publisher) *Orchestrator {
	return NewOrchestrator(slots, remover, pub, nil, logging.Default())
}

func TestBook_Success(t *testing.T) {
	slots := &fakeSlotSource{view: []string{
		"2030-01-03T09:00:00Z",
		"2030-01-04T10:30:00Z",
		"2030-01-05T11:00:00Z",
	}}
	remover := &fakeSlotRemover{}
	publisher := &capturingPublisher{}
	orch := newTestOrchestrator(slots, remover, publisher)

	result := orch.Book(context.Background(), Request{
		DoctorID:        "doc-1",
		DoctorName:      "Dr. Asha Rao",
		SelectedSlot:    "2",
		PatientName:     "Ravi Kumar",
		PatientEmail:    "ravi@example.com",
		SymptomsSummary: "Patient reported: chest pain",
		Specialty:       "Cardiology",
		SessionID:       "sess-42",
	})

	if !result.Success {
		t.Fatalf("expected success, got %#v", result)
	}
	if len(remover.removed) != 1 || remover.removed[0] != "2030-01-04T10:30:00Z" {
		t.Fatalf("expected second slot claimed, got %v", remover.removed)
	}
	if result.SlotNumber != "2" || result.Timestamp != "2030-01-04T10:30:00Z" {
		t.Fatalf("unexpected result %#v", result)
	}
	if result.AppointmentDateTime != "January 4, 2030 at 10:30 AM" {
		t.Fatalf("unexpected display time %q", result.AppointmentDateTime)
	}
	if result.Message != "Successfully booked Slot 2: January 4, 2030 at 10:30 AM" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if result.ConfirmationID != "sess-42" {
		t.Fatalf("expected session id reused as confirmation id, got %q", result.ConfirmationID)
	}
	if !result.NotificationSent {
		t.Fatal("expected notification flagged as sent")
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 confirmation published, got %d", len(publisher.published))
	}
	c := publisher.published[0]
	if c.PatientEmail != "ravi@example.com" || c.Specialty != "Cardiology" {
		t.Fatalf("unexpected confirmation %#v", c)
	}
}

func TestBook_GeneratesConfirmationIDWithoutSession(t *testing.T) {
	slots := &fakeSlotSource{view: []string{"2030-01-03T09:00:00Z"}}
	orch := newTestOrchestrator(slots, &fakeSlotRemover{}, nil)

	result := orch.Book(context.Background(), Request{DoctorID: "doc-1", SelectedSlot: "1"})
	if !result.Success {
		t.Fatalf("expected success, got %#v", result)
	}
	if len(result.ConfirmationID) != 8 {
		t.Fatalf("expected 8-char generated confirmation id, got %q", result.ConfirmationID)
	}
	if result.ConfirmationID != strings.ToUpper(result.ConfirmationID) {
		t.Fatalf("expected uppercase confirmation id, got %q", result.ConfirmationID)
	}
}

func TestBook_NoAvailability(t *testing.T) {
	orch := newTestOrchestrator(&fakeSlotSource{view: nil}, &fakeSlotRemover{}, nil)

	result := orch.Book(context.Background(), Request{DoctorID: "doc-1", SelectedSlot: "1"})
	if result.Success {
		t.Fatal("expected failure with no availability")
	}
	if result.Message != "No available timeslots found for this doctor." {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestBook_InvalidOrdinalFormat(t *testing.T) {
	orch := newTestOrchestrator(&fakeSlotSource{view: []string{"2030-01-03T09:00:00Z"}}, &fakeSlotRemover{}, nil)

	result := orch.Book(context.Background(), Request{DoctorID: "doc-1", SelectedSlot: "first"})
	if result.Success || result.Message != "Invalid slot number format. Please provide a number." {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestBook_OrdinalOutOfRange(t *testing.T) {
	view := []string{"2030-01-03T09:00:00Z", "2030-01-04T09:00:00Z"}
	orch := newTestOrchestrator(&fakeSlotSource{view: view}, &fakeSlotRemover{}, nil)

	for _, sel := range []string{"0", "3", "-1"} {
		result := orch.Book(context.Background(), Request{DoctorID: "doc-1", SelectedSlot: sel})
		if result.Success {
			t.Fatalf("selection %q should fail", sel)
		}
		if result.Message != "Invalid slot number. Please select from 1 to 2." {
			t.Fatalf("unexpected message for %q: %q", sel, result.Message)
		}
	}
}

func TestBook_ConflictLosesRace(t *testing.T) {
	remover := &fakeSlotRemover{err: schedule.ErrSlotConflict}
	orch := newTestOrchestrator(&fakeSlotSource{view: []string{"2030-01-03T09:00:00Z"}}, remover, nil)

	result := orch.Book(context.Background(), Request{DoctorID: "doc-1", SelectedSlot: "1"})
	if result.Success {
		t.Fatal("expected conflict failure")
	}
	if result.Message != "Unable to book this slot. It may have been taken by another patient. Please select a different slot." {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestBook_SlotViewErrorIsGenericFailure(t *testing.T) {
	orch := newTestOrchestrator(&fakeSlotSource{err: errors.New("dynamo down")}, &fakeSlotRemover{}, nil)

	result := orch.Book(context.Background(), Request{DoctorID: "doc-1", SelectedSlot: "1"})
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Message != "An error occurred while booking the appointment. Please try again." {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestBook_PublishFailureDoesNotUnbook(t *testing.T) {
	remover := &fakeSlotRemover{}
	publisher := &capturingPublisher{err: errors.New("queue down")}
	orch := newTestOrchestrator(&fakeSlotSource{view: []string{"2030-01-03T09:00:00Z"}}, remover, publisher)

	result := orch.Book(context.Background(), Request{DoctorID: "doc-1", SelectedSlot: "1"})
	if !result.Success {
		t.Fatalf("booking must stand even when notification fails: %#v", result)
	}
	if result.NotificationSent {
		t.Fatal("notification flag must be false after publish failure")
	}
	if len(remover.removed) != 1 {
		t.Fatal("slot removal should have happened exactly once")
	}
}

func TestBook_ConfirmationDefaults(t *testing.T) {
	publisher := &capturingPublisher{}
	orch := newTestOrchestrator(&fakeSlotSource{view: []string{"2030-01-03T09:00:00Z"}}, &fakeSlotRemover{}, publisher)

	result := orch.Book(context.Background(), Request{DoctorID: "doc-1", SelectedSlot: "1"})
	if !result.Success {
		t.Fatalf("expected success, got %#v", result)
	}

	c := publisher.published[0]
	if c.PatientName != "ABC" || c.PatientEmail != "test@gmail.com" {
		t.Fatalf("unexpected patient defaults %#v", c)
	}
	if c.SymptomsSummary != "General consultation" || c.Specialty != "General" {
		t.Fatalf("unexpected clinical defaults %#v", c)
	}
	if c.ReportInsight != "NA" {
		t.Fatalf("unexpected insight default %q", c.ReportInsight)
	}
}
