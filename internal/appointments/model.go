package appointments

import "time"

// Appointment lifecycle statuses. Slots only collide with scheduled or
// confirmed rows; completion is driven by a process outside this service.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusPending   = "pending"
)

// Appointment is a booked salon visit. AppointmentID is the human-readable
// confirmation number generated at booking time; CustomerID may be empty
// when the customer record could not be resolved.
type Appointment struct {
	AppointmentID   string    `json:"appointment_id"`
	CustomerID      string    `json:"customer_id,omitempty"`
	Service         string    `json:"service"`
	Stylist         string    `json:"stylist"`
	AppointmentTime time.Time `json:"appointment_time"`
	Status          string    `json:"status"`
	Price           float64   `json:"price"`
	Notes           string    `json:"notes,omitempty"`
	Source          string    `json:"source,omitempty"`
}

// Detail is an appointment joined with its customer for lookups.
type Detail struct {
	Appointment
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

// DetailFilter narrows an appointment detail lookup. Present fields are
// AND-combined; the name matches as a case-insensitive substring.
type DetailFilter struct {
	AppointmentID string
	CustomerName  string
	CustomerPhone string
}

// BookedSlot is the (time, stylist) occupancy view the availability engine
// collides against.
type BookedSlot struct {
	Time    time.Time
	Stylist string
	Service string
}

// ServiceStats aggregates booking history for one service.
type ServiceStats struct {
	Service       string
	MinPrice      float64
	MaxPrice      float64
	AvgPrice      float64
	TotalBookings int
	Stylists      []string
}
