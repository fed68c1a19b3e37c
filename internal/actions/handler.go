package actions

import (
	"encoding/json"
	"net/http"

	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

// Handler exposes the action router over HTTP for non-Lambda deployments.
type Handler struct {
	router *Router
	logger *logging.Logger
}

// NewHandler creates an HTTP handler around the router.
func NewHandler(router *Router, logger *logging.Logger) *Handler {
	if router == nil {
		panic("actions: router cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		router: router,
		logger: logger,
	}
}

// Invoke handles POST /v1/invocations. Even an unparsable request yields a
// well-formed envelope carrying the generic error message, mirroring the
// Lambda contract.
func (h *Handler) Invoke(w http.ResponseWriter, req *http.Request) {
	var inv Invocation
	if err := json.NewDecoder(req.Body).Decode(&inv); err != nil {
		h.logger.Warn("unparsable invocation payload", "error", err)
		h.writeJSON(w, Response{
			Response: responseBody{
				FunctionResponse: functionResponse{
					ResponseBody: responseContent{
						Text: textBody{Body: internalErrorMessage},
					},
				},
			},
			MessageVersion: 1,
		})
		return
	}

	h.writeJSON(w, h.router.Handle(req.Context(), inv))
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
