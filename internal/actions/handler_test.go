package actions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

func newTestHandler() *Handler {
	router := newTestRouter(&fakeDirectory{}, &fakeSlots{}, &fakeBooker{}, nil)
	return NewHandler(router, logging.Default())
}

func TestInvoke_RoutesDecodedRequest(t *testing.T) {
	handler := newTestHandler()

	payload := `{
		"actionGroup": "appointment-actions",
		"function": "get_doctors_by_specialty",
		"parameters": [
			{"name": "specialty", "value": "Cardiology"},
			{"name": "location", "value": "Mumbai"}
		],
		"sessionId": "sess-1",
		"sessionAttributes": {}
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/invocations", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.Invoke(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Response.Function != FuncListDoctors {
		t.Fatalf("expected function echoed, got %q", resp.Response.Function)
	}
	if resp.SessionAttributes["current_specialty"] != "Cardiology" {
		t.Fatalf("expected session updated, got %v", resp.SessionAttributes)
	}
}

func TestInvoke_BadPayloadStillReturnsEnvelope(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/invocations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.Invoke(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 even for bad payload, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error envelope is not valid JSON: %v", err)
	}
	if resp.Body() != internalErrorMessage {
		t.Fatalf("unexpected body %q", resp.Body())
	}
	if resp.MessageVersion != 1 {
		t.Fatalf("expected message version 1, got %d", resp.MessageVersion)
	}
}

func TestHealthCheck(t *testing.T) {
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != `{"status":"ok"}` {
		t.Fatalf("unexpected body %q", body)
	}
}
