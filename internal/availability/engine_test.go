package availability

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/salon-voice-agent/internal/appointments"
)

type fakeSlots struct {
	booked map[string][]appointments.BookedSlot
	err    error
}

func (f *fakeSlots) BookedSlots(ctx context.Context, day, service, stylist string) ([]appointments.BookedSlot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.booked[day], nil
}

type fakeRoster struct {
	names []string
	err   error
}

func (f *fakeRoster) DistinctStylists(ctx context.Context) ([]string, error) {
	return f.names, f.err
}

func testEngine(slots SlotSource, roster RosterSource) *Engine {
	e := NewEngine(slots, roster, nil)
	e.nowFn = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }
	e.rng = rand.New(rand.NewSource(1))
	return e
}

func TestCheckExcludesBookedCells(t *testing.T) {
	when := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	e := testEngine(
		&fakeSlots{booked: map[string][]appointments.BookedSlot{
			"2025-03-10": {{Time: when, Stylist: "Riya Sharma", Service: "Haircut"}},
		}},
		&fakeRoster{names: []string{"Riya Sharma", "Aditi Verma"}},
	)

	res := e.Check(context.Background(), "2025-03-10", "Haircut", "")
	for _, slot := range res.Slots {
		if slot.Date == "2025-03-10" && slot.Hour == 14 && slot.Stylist == "Riya Sharma" {
			t.Fatalf("emitted a slot colliding with a confirmed appointment: %+v", slot)
		}
	}
	if res.Synthetic {
		t.Error("scan with roster data should not be synthetic")
	}
}

func TestCheckCountsAndCap(t *testing.T) {
	e := testEngine(
		&fakeSlots{},
		&fakeRoster{names: []string{"Riya Sharma", "Aditi Verma"}},
	)

	res := e.Check(context.Background(), "2025-03-10", "", "")
	// 7 days x 10 hours x 2 stylists, capped at 50 returned slots.
	if res.TotalAvailable != 140 {
		t.Errorf("total = %d, want 140", res.TotalAvailable)
	}
	if len(res.Slots) != 50 {
		t.Errorf("returned slots = %d, want cap of 50", len(res.Slots))
	}
	if res.DaysChecked != 7 {
		t.Errorf("days checked = %d", res.DaysChecked)
	}
	if res.DateRequested != "2025-03-10" || res.NextAvailableDate != "2025-03-10" {
		t.Errorf("dates = %q / %q", res.DateRequested, res.NextAvailableDate)
	}
	if len(res.GroupedByDate) != 7 {
		t.Errorf("grouped dates = %d, want 7", len(res.GroupedByDate))
	}
}

func TestCheckStylistFilter(t *testing.T) {
	e := testEngine(
		&fakeSlots{},
		&fakeRoster{names: []string{"Riya Sharma", "Aditi Verma"}},
	)

	res := e.Check(context.Background(), "2025-03-10", "", "Aditi Verma")
	if res.TotalAvailable != 70 {
		t.Errorf("total = %d, want 70", res.TotalAvailable)
	}
	for _, slot := range res.Slots {
		if slot.Stylist != "Aditi Verma" {
			t.Fatalf("slot for wrong stylist: %+v", slot)
		}
	}
}

func TestCheckSynthesizesWhenNoHistory(t *testing.T) {
	e := testEngine(&fakeSlots{}, &fakeRoster{})

	res := e.Check(context.Background(), "2025-03-10", "Haircut", "")
	if !res.Synthetic {
		t.Fatal("expected synthetic slots with an empty roster")
	}
	if res.TotalAvailable < 6 || res.TotalAvailable > 9 {
		t.Errorf("synthetic total = %d, want 2-3 per day over 3 days", res.TotalAvailable)
	}
	seen := map[string]bool{}
	for _, slot := range res.Slots {
		if !slot.Synthetic {
			t.Errorf("slot not flagged synthetic: %+v", slot)
		}
		if slot.Service != "Haircut" {
			t.Errorf("slot service = %q, want Haircut", slot.Service)
		}
		if !strings.HasPrefix(slot.SlotID, "default_") {
			t.Errorf("synthetic slot id = %q", slot.SlotID)
		}
		// Hours are drawn without replacement within a day.
		key := slot.Date + slot.Time
		if seen[key] {
			t.Errorf("duplicate synthetic slot %q", key)
		}
		seen[key] = true
	}
}

func TestCheckSyntheticHonorsRequestedStylist(t *testing.T) {
	e := testEngine(&fakeSlots{}, &fakeRoster{})

	res := e.Check(context.Background(), "", "", "Neha Gupta")
	if !res.Synthetic {
		t.Fatal("expected synthetic slots")
	}
	for _, slot := range res.Slots {
		if slot.Stylist != "Neha Gupta" {
			t.Errorf("slot stylist = %q", slot.Stylist)
		}
	}
}

func TestCheckStorageErrorFallsBackToHouseRoster(t *testing.T) {
	e := testEngine(
		&fakeSlots{err: errors.New("connection refused")},
		&fakeRoster{err: errors.New("connection refused")},
	)

	res := e.Check(context.Background(), "2025-03-10", "", "")
	if res.Synthetic {
		t.Error("storage errors should degrade to the house roster, not synthesis")
	}
	// 7 days x 10 hours x 4 default stylists.
	if res.TotalAvailable != 280 {
		t.Errorf("total = %d, want 280", res.TotalAvailable)
	}
}

func TestCheckDefaultsDateToToday(t *testing.T) {
	e := testEngine(&fakeSlots{}, &fakeRoster{names: []string{"Riya Sharma"}})

	res := e.Check(context.Background(), "", "", "")
	if res.DateRequested != "2025-03-10" {
		t.Errorf("date requested = %q, want engine clock's today", res.DateRequested)
	}
}

func TestSlotIDFormat(t *testing.T) {
	s := newSlot("2025-03-10", 14, "Riya Sharma", "", false)
	if s.SlotID != "slot_20250310_14_Riya_Sharma" {
		t.Errorf("slot id = %q", s.SlotID)
	}
	if s.Time != "2:00 PM" {
		t.Errorf("slot time = %q", s.Time)
	}
	if s.Service != "Any Service" {
		t.Errorf("slot service = %q", s.Service)
	}
}
