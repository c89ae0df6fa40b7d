package appointments

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &Store{pool: mock}

	when := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs("SAL-123456", "c1", "Haircut", "Riya Sharma", when, "confirmed", 40.0, "notes", "ai_booking").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Insert(context.Background(), &Appointment{
		AppointmentID:   "SAL-123456",
		CustomerID:      "c1",
		Service:         "Haircut",
		Stylist:         "Riya Sharma",
		AppointmentTime: when,
		Status:          StatusConfirmed,
		Price:           40.0,
		Notes:           "notes",
		Source:          "ai_booking",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestCancelMatchingByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &Store{pool: mock}

	mock.ExpectExec("UPDATE appointments").
		WithArgs("SAL-123456").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	n, err := store.CancelMatching(context.Background(), "SAL-123456", "")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if n != 1 {
		t.Errorf("cancelled = %d, want 1", n)
	}
}

func TestCancelMatchingBothFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &Store{pool: mock}

	mock.ExpectExec("UPDATE appointments").
		WithArgs("SAL-123456", "+911234567890").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	n, err := store.CancelMatching(context.Background(), "SAL-123456", "+911234567890")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if n != 0 {
		t.Errorf("cancelled = %d, want 0", n)
	}
}

func TestCancelMatchingRefusesEmptyFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &Store{pool: mock}

	n, err := store.CancelMatching(context.Background(), "", "")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if n != 0 {
		t.Errorf("cancelled = %d, want 0", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no SQL should have run: %v", err)
	}
}

func TestBookedSlotsWithFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &Store{pool: mock}

	when := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT appointment_time, stylist, service").
		WithArgs("2025-03-10", "Haircut", "Riya Sharma").
		WillReturnRows(pgxmock.NewRows([]string{"appointment_time", "stylist", "service"}).
			AddRow(when, "Riya Sharma", "Haircut"))

	slots, err := store.BookedSlots(context.Background(), "2025-03-10", "Haircut", "Riya Sharma")
	if err != nil {
		t.Fatalf("booked slots: %v", err)
	}
	if len(slots) != 1 || slots[0].Stylist != "Riya Sharma" || slots[0].Time.Hour() != 14 {
		t.Errorf("slots = %+v", slots)
	}
}

func TestFindDetailsFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &Store{pool: mock}

	when := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT a.appointment_id").
		WithArgs("%Asha%", "+911234567890").
		WillReturnRows(pgxmock.NewRows([]string{
			"appointment_id", "customer_id", "service", "stylist",
			"appointment_time", "status", "price", "notes", "source",
			"name", "phone",
		}).AddRow("SAL-123456", "c1", "Haircut", "Riya Sharma", when, "confirmed", 40.0, "", "ai_booking", "Asha", "+911234567890"))

	details, err := store.FindDetails(context.Background(), DetailFilter{
		CustomerName:  "Asha",
		CustomerPhone: "+911234567890",
	})
	if err != nil {
		t.Fatalf("find details: %v", err)
	}
	if len(details) != 1 || details[0].CustomerName != "Asha" {
		t.Errorf("details = %+v", details)
	}
}

func TestBusyCounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &Store{pool: mock}

	mock.ExpectQuery("SELECT stylist, COUNT").
		WithArgs("2025-03-10").
		WillReturnRows(pgxmock.NewRows([]string{"stylist", "busy_slots"}).
			AddRow("Riya Sharma", 6).
			AddRow("Aditi Verma", 2))

	counts, err := store.BusyCounts(context.Background(), "2025-03-10")
	if err != nil {
		t.Fatalf("busy counts: %v", err)
	}
	if counts["Riya Sharma"] != 6 || counts["Aditi Verma"] != 2 {
		t.Errorf("counts = %v", counts)
	}
}

func TestServicePriceStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &Store{pool: mock}

	stylists := "Riya Sharma, Aditi Verma"
	mock.ExpectQuery("SELECT service").
		WillReturnRows(pgxmock.NewRows([]string{"service", "min", "max", "avg", "count", "stylists"}).
			AddRow("Haircut", 35.0, 45.0, 40.0, 120, &stylists))

	stats, err := store.ServicePriceStats(context.Background())
	if err != nil {
		t.Fatalf("service stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats[0].TotalBookings != 120 || len(stats[0].Stylists) != 2 {
		t.Errorf("stats[0] = %+v", stats[0])
	}
}

func TestDayKey(t *testing.T) {
	when := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	if got := DayKey(when); got != "2025-03-10" {
		t.Errorf("DayKey = %q", got)
	}
}
