package fallback

import (
	"testing"
	"time"
)

func TestDataForKnownOperations(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	data := DataFor("get_available_stylists", now)
	stylists, ok := data["availableStylists"].([]map[string]any)
	if !ok || len(stylists) != 2 {
		t.Fatalf("expected two fallback stylists, got %v", data)
	}

	data = DataFor("check_availability", now)
	slots, ok := data["availableSlots"].([]map[string]any)
	if !ok || len(slots) != 2 {
		t.Fatalf("expected two fallback slots, got %v", data)
	}
	for _, slot := range slots {
		if slot["date"] != "2025-03-10" {
			t.Errorf("fallback slot date = %v, want today", slot["date"])
		}
	}

	data = DataFor("get_service_prices", now)
	if _, ok := data["services"]; !ok {
		t.Errorf("expected fallback services, got %v", data)
	}
}

func TestDataForUnknownOperation(t *testing.T) {
	data := DataFor("cancel_appointment", time.Now())
	if data["message"] == "" {
		t.Errorf("expected generic message, got %v", data)
	}
}
