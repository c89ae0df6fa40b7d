package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wolfman30/salon-voice-agent/internal/audit"
	"github.com/wolfman30/salon-voice-agent/internal/fallback"
	"github.com/wolfman30/salon-voice-agent/internal/observability/metrics"
	"github.com/wolfman30/salon-voice-agent/pkg/logging"
)

// Envelope is the wire request from the voice-agent runtime. Different
// runtimes spell the correlation key differently, so all three aliases are
// accepted.
type Envelope struct {
	FunctionName string         `json:"function_name"`
	Parameters   map[string]any `json:"parameters"`
	CallID       string         `json:"call_id"`
	SessionID    string         `json:"sessionId"`
	CallIDAlt    string         `json:"callId"`
	BotID        string         `json:"bot_id"`
}

// ResolveCallID picks the correlation key, falling back to a sentinel so
// an anonymous invocation still produces an audit row.
func (e Envelope) ResolveCallID() string {
	switch {
	case e.CallID != "":
		return e.CallID
	case e.SessionID != "":
		return e.SessionID
	case e.CallIDAlt != "":
		return e.CallIDAlt
	default:
		return "unknown_call"
	}
}

// Handler serves POST /in-call.
type Handler struct {
	dispatcher *Dispatcher
	recorder   *audit.Recorder
	metrics    *metrics.DispatchMetrics
	logger     *logging.Logger
	nowFn      func() time.Time
}

// NewHandler creates the in-call HTTP handler. Recorder and metrics may be
// nil; both degrade to no-ops.
func NewHandler(dispatcher *Dispatcher, recorder *audit.Recorder, m *metrics.DispatchMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		recorder:   recorder,
		metrics:    m,
		logger:     logger,
		nowFn:      time.Now,
	}
}

// ServeHTTP handles one invocation. The response is fully computed and
// written before the audit record is attempted, so a slow or broken audit
// store can never change what the caller already received.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var env Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		h.logger.Error("dispatch: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON body"})
		return
	}

	callID := env.ResolveCallID()
	if env.Parameters == nil {
		env.Parameters = map[string]any{}
	}

	if env.FunctionName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":               "function_name missing or invalid",
			"available_functions": FunctionNames(),
		})
		return
	}

	op := ParseOp(env.FunctionName)
	if op == OpUnrecognized {
		h.logger.Warn("dispatch: unknown function", "function", env.FunctionName, "call_id", callID)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":               "Function not found",
			"available_functions": FunctionNames(),
		})
		return
	}

	h.logger.Info("dispatch: function invoked", "function", op.String(), "call_id", callID)

	start := h.nowFn()
	result, err := h.dispatcher.Invoke(r.Context(), op, env.Parameters, callID)
	h.metrics.ObserveLatency(op.String(), h.nowFn().Sub(start).Seconds())

	if err != nil {
		h.logger.Error("dispatch: handler failed", "function", op.String(), "call_id", callID, "error", err)
		h.metrics.ObserveInvocation(op.String(), "error")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":         "Internal server error",
			"message":       err.Error(),
			"fallback_data": fallback.DataFor(op.String(), h.nowFn()),
		})
		h.record(r.Context(), env, op, callID, map[string]any{"error": err.Error()})
		return
	}

	h.metrics.ObserveInvocation(op.String(), "ok")
	writeJSON(w, http.StatusOK, result)
	h.record(r.Context(), env, op, callID, result)
}

// record writes the audit row after the response is already on the wire.
// The parent context may be cancelled by the client hanging up, so the
// write is detached from it.
func (h *Handler) record(ctx context.Context, env Envelope, op Op, callID string, response any) {
	if h.recorder == nil {
		return
	}
	ok := h.recorder.Record(context.WithoutCancel(ctx), audit.Entry{
		CallID:       callID,
		BotID:        env.BotID,
		FunctionName: op.String(),
		Request:      env.Parameters,
		Response:     response,
	})
	if !ok {
		h.metrics.ObserveAuditFailure()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Response is committed at this point; an encode error has nowhere to go.
	_ = json.NewEncoder(w).Encode(v)
}
