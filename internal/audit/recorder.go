// Package audit writes the side-channel function log: one row per
// invocation with its size-capped request and response. Audit writes are
// best-effort by contract; every failure path here ends in a log line, never
// an error the dispatcher could see.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wolfman30/salon-voice-agent/pkg/logging"
)

// MaxPayloadBytes caps a serialized request or response before insert, so a
// runaway payload cannot produce oversized log rows.
const MaxPayloadBytes = 50000

// Entry is one invocation record.
type Entry struct {
	CallID       string
	BotID        string
	FunctionName string
	Request      any
	Response     any
}

// Recorder persists function-log rows. A nil Recorder discards everything,
// which keeps wiring optional in tests and degraded deployments.
type Recorder struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewRecorder creates an audit recorder over the given database handle.
func NewRecorder(db *sql.DB, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{db: db, logger: logger}
}

// Record writes the entry and reports whether a row was persisted. The
// wide insert is tried first; if the destination schema lacks bot_id the
// narrow shape is attempted before giving up silently.
func (r *Recorder) Record(ctx context.Context, e Entry) bool {
	if r == nil || r.db == nil {
		return false
	}

	request := Serialize(e.Request)
	response := Serialize(e.Response)

	var botID sql.NullString
	if e.BotID != "" {
		botID = sql.NullString{String: e.BotID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO function_logs (call_id, bot_id, function_name, request_data, response_data, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		e.CallID, botID, e.FunctionName, request, response,
	)
	if err == nil {
		return true
	}
	r.logger.Warn("audit: primary function_logs insert failed", "call_id", e.CallID, "error", err)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO function_logs (call_id, function_name, request_data, response_data)
		VALUES ($1, $2, $3, $4)`,
		e.CallID, e.FunctionName, request, response,
	)
	if err != nil {
		r.logger.Warn("audit: fallback function_logs insert failed", "call_id", e.CallID, "error", err)
		return false
	}
	return true
}

// Serialize renders a payload as JSON capped at MaxPayloadBytes.
func Serialize(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", "unserializable: "+err.Error())
	}
	if len(b) > MaxPayloadBytes {
		return string(b[:MaxPayloadBytes]) + "...TRUNCATED..."
	}
	return string(b)
}
