package timeparse

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

func TestParseDirectForms(t *testing.T) {
	tests := []struct {
		date, timeStr string
		wantHour      int
		wantMinute    int
	}{
		{"2025-03-10", "16:00", 16, 0},
		{"2025-03-10", "4:00 PM", 16, 0},
		{"2025-03-10", "4:30pm", 16, 30},
		{"2025-03-10", "4pm", 16, 0},
		{"2025-03-10", "11am", 11, 0},
		{"2025-03-10", "12am", 0, 0},
		{"2025-03-10", "4", 4, 0},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.date, tt.timeStr, testNow)
		if !ok {
			t.Errorf("Parse(%q, %q) failed", tt.date, tt.timeStr)
			continue
		}
		if got.Hour() != tt.wantHour || got.Minute() != tt.wantMinute {
			t.Errorf("Parse(%q, %q) = %v, want %02d:%02d", tt.date, tt.timeStr, got, tt.wantHour, tt.wantMinute)
		}
		if got.Day() != 10 {
			t.Errorf("Parse(%q, %q) day = %d, want 10", tt.date, tt.timeStr, got.Day())
		}
	}
}

func TestParseRelativeDates(t *testing.T) {
	got, ok := Parse("tomorrow", "4pm", testNow)
	if !ok {
		t.Fatal("expected tomorrow 4pm to parse")
	}
	if got.Day() != 10 || got.Hour() != 16 {
		t.Errorf("tomorrow 4pm = %v", got)
	}

	got, ok = Parse("today", "9am", testNow)
	if !ok || got.Day() != 9 || got.Hour() != 9 {
		t.Errorf("today 9am = %v ok=%v", got, ok)
	}
}

func TestParseBareDate(t *testing.T) {
	got, ok := Parse("2025-03-12", "", testNow)
	if !ok {
		t.Fatal("expected bare date to parse")
	}
	if got.Day() != 12 || got.Hour() != 10 {
		t.Errorf("bare date = %v, want the 12th at 10:00", got)
	}
}

func TestParseGarbage(t *testing.T) {
	if _, ok := Parse("whenever", "later", testNow); ok {
		t.Error("expected garbage input to fail")
	}
	if _, ok := Parse("", "", testNow); ok {
		t.Error("expected empty input to fail")
	}
}

func TestDefaultSlot(t *testing.T) {
	got := DefaultSlot(testNow)
	want := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DefaultSlot = %v, want %v", got, want)
	}
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	if got := FormatDateTime(ts); got != "Mon, Mar 10, 4:00 PM" {
		t.Errorf("FormatDateTime = %q", got)
	}
	if got := FormatDateTime(time.Time{}); got != "Not scheduled" {
		t.Errorf("FormatDateTime(zero) = %q", got)
	}
}

func TestFormatHour(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{9, "9:00 AM"},
		{12, "12:00 PM"},
		{14, "2:00 PM"},
		{0, "12:00 AM"},
	}
	for _, tt := range tests {
		if got := FormatHour(tt.hour); got != tt.want {
			t.Errorf("FormatHour(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}
