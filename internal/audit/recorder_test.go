package audit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRecordWideInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO function_logs").
		WithArgs("call_1", "bot_1", "book_appointment", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := NewRecorder(db, nil)
	ok := r.Record(context.Background(), Entry{
		CallID:       "call_1",
		BotID:        "bot_1",
		FunctionName: "book_appointment",
		Request:      map[string]any{"service": "Haircut"},
		Response:     map[string]any{"success": true},
	})
	if !ok {
		t.Error("expected record to report success")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordFallsBackToNarrowInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO function_logs").
		WillReturnError(errors.New(`column "bot_id" does not exist`))
	mock.ExpectExec("INSERT INTO function_logs").
		WithArgs("call_1", "check_availability", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := NewRecorder(db, nil)
	r.Record(context.Background(), Entry{
		CallID:       "call_1",
		FunctionName: "check_availability",
		Request:      map[string]any{},
		Response:     map[string]any{},
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordSwallowsAllFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO function_logs").WillReturnError(errors.New("down"))
	mock.ExpectExec("INSERT INTO function_logs").WillReturnError(errors.New("still down"))

	r := NewRecorder(db, nil)
	// Must not panic or propagate anything.
	if r.Record(context.Background(), Entry{CallID: "call_1", FunctionName: "x"}) {
		t.Error("expected record to report failure")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	if r.Record(context.Background(), Entry{CallID: "call_1"}) {
		t.Error("nil recorder should not report success")
	}
}

func TestSerializeCapsPayload(t *testing.T) {
	huge := strings.Repeat("a", MaxPayloadBytes*2)
	got := Serialize(map[string]string{"blob": huge})
	if !strings.HasSuffix(got, "...TRUNCATED...") {
		t.Error("expected truncation marker")
	}
	if len(got) != MaxPayloadBytes+len("...TRUNCATED...") {
		t.Errorf("capped length = %d", len(got))
	}
}

func TestSerializeUnserializable(t *testing.T) {
	got := Serialize(map[string]any{"ch": make(chan int)})
	if !strings.Contains(got, "unserializable") {
		t.Errorf("got %q", got)
	}
}
