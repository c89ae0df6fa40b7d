// Package booking creates and cancels appointments on behalf of the in-call
// agent. Its failure posture is deliberate: a storage outage mid-booking
// still yields a confirmation number for the caller, flagged as unsaved, so
// the call stays productive.
package booking

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/salon-voice-agent/internal/appointments"
	"github.com/wolfman30/salon-voice-agent/internal/catalog"
	"github.com/wolfman30/salon-voice-agent/internal/customers"
	"github.com/wolfman30/salon-voice-agent/internal/fallback"
	"github.com/wolfman30/salon-voice-agent/internal/timeparse"
	"github.com/wolfman30/salon-voice-agent/pkg/logging"
)

var tracer = otel.Tracer("salon.internal.booking")

// unassignedStylist is spoken when the caller did not pick anyone.
const unassignedStylist = "To be assigned"

// CustomerResolver finds or creates the customer for a phone number.
type CustomerResolver interface {
	FindOrCreate(ctx context.Context, phone, name string) (*customers.Customer, error)
}

// AppointmentWriter mutates appointment rows.
type AppointmentWriter interface {
	Insert(ctx context.Context, a *appointments.Appointment) error
	CancelMatching(ctx context.Context, appointmentID, customerPhone string) (int64, error)
}

// BookRequest carries the parameters extracted from the call.
type BookRequest struct {
	CustomerName  string
	CustomerPhone string
	Service       string
	Stylist       string
	Date          string
	Time          string
	Notes         string
	CallID        string
}

// BookResult is the structured booking outcome the agent speaks from.
type BookResult struct {
	Success             bool   `json:"success"`
	Message             string `json:"message,omitempty"`
	AppointmentID       string `json:"appointmentId,omitempty"`
	CustomerID          string `json:"customerId,omitempty"`
	Service             string `json:"service,omitempty"`
	Stylist             string `json:"stylist,omitempty"`
	Time                string `json:"time,omitempty"`
	Status              string `json:"status,omitempty"`
	Price               string `json:"price,omitempty"`
	ConfirmationMessage string `json:"confirmationMessage,omitempty"`
	Reminder            string `json:"reminder,omitempty"`
	DBSaved             *bool  `json:"appointment_db_saved,omitempty"`
}

// CancelResult is the structured cancellation outcome.
type CancelResult struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	CancelledCount int64          `json:"cancelledCount,omitempty"`
	Fallback       map[string]any `json:"fallback,omitempty"`
}

// Service books and cancels appointments.
type Service struct {
	customers    CustomerResolver
	appointments AppointmentWriter
	logger       *logging.Logger
	nowFn        func() time.Time
	seq          atomic.Int64
}

// NewService constructs a booking service.
func NewService(resolver CustomerResolver, writer AppointmentWriter, logger *logging.Logger) *Service {
	if writer == nil {
		panic("booking: appointment writer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		customers:    resolver,
		appointments: writer,
		logger:       logger,
		nowFn:        time.Now,
	}
}

// Book creates a confirmed appointment. Phone and service are required;
// everything else degrades: a failed customer lookup books the visit
// anonymously, an unparseable time lands on tomorrow at 10:00, and a failed
// insert still hands the caller their confirmation number with
// appointment_db_saved set to false.
func (s *Service) Book(ctx context.Context, req BookRequest) BookResult {
	ctx, span := tracer.Start(ctx, "booking.book")
	defer span.End()
	span.SetAttributes(attribute.String("salon.service", req.Service))

	if req.CustomerPhone == "" || req.Service == "" {
		return BookResult{Success: false, Message: "Customer phone and service are required"}
	}

	var customerID string
	if s.customers != nil {
		if c, err := s.customers.FindOrCreate(ctx, req.CustomerPhone, req.CustomerName); err != nil {
			s.logger.Warn("booking: customer resolution failed, booking without record",
				"phone", req.CustomerPhone, "error", err)
		} else {
			customerID = c.ID
		}
	}

	now := s.nowFn()
	when, ok := timeparse.Parse(req.Date, req.Time, now)
	if !ok {
		when = timeparse.DefaultSlot(now)
	}

	stylist := req.Stylist
	if stylist == "" {
		stylist = unassignedStylist
	}

	callID := req.CallID
	if callID == "" {
		callID = "unknown"
	}
	notes := req.Notes
	if notes == "" {
		notes = fmt.Sprintf("Booked via AI call. Call ID: %s", callID)
	}

	appointmentID := s.nextAppointmentID()
	price := catalog.ServicePrice(req.Service)

	appt := &appointments.Appointment{
		AppointmentID:   appointmentID,
		CustomerID:      customerID,
		Service:         req.Service,
		Stylist:         stylist,
		AppointmentTime: when,
		Status:          appointments.StatusConfirmed,
		Price:           price,
		Notes:           notes,
		Source:          "ai_booking",
	}

	result := BookResult{
		Success:       true,
		AppointmentID: appointmentID,
		CustomerID:    customerID,
		Service:       req.Service,
		Stylist:       stylist,
		Time:          timeparse.FormatDateTime(when),
		Status:        appointments.StatusConfirmed,
		Price:         catalog.FormatPrice(price),
	}

	if err := s.appointments.Insert(ctx, appt); err != nil {
		span.RecordError(err)
		s.logger.Warn("booking: appointment insert failed, returning unsaved confirmation",
			"appointment_id", appointmentID, "error", err)
		saved := false
		result.DBSaved = &saved
		result.ConfirmationMessage = fmt.Sprintf(
			"Appointment created (DB write failed: %v). Appointment ID: %s", err, appointmentID)
		return result
	}

	s.logger.Info("booking: appointment confirmed",
		"appointment_id", appointmentID, "service", req.Service, "stylist", stylist)
	result.ConfirmationMessage = fmt.Sprintf(
		"Appointment booked successfully! Your appointment ID is %s. Please arrive 10 minutes before your appointment.",
		appointmentID)
	result.Reminder = "You will receive a confirmation SMS shortly."
	return result
}

// Cancel flips matching scheduled/confirmed appointments to cancelled.
// Filters are AND-combined; with neither filter present nothing is touched,
// since a mass cancellation mid-call can only be a parameter extraction bug.
func (s *Service) Cancel(ctx context.Context, appointmentID, customerPhone string) CancelResult {
	ctx, span := tracer.Start(ctx, "booking.cancel")
	defer span.End()

	if appointmentID == "" && customerPhone == "" {
		return CancelResult{Success: false, Message: "Provide an appointment ID or phone number to cancel"}
	}

	count, err := s.appointments.CancelMatching(ctx, appointmentID, customerPhone)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("booking: cancellation failed", "appointment_id", appointmentID, "error", err)
		return CancelResult{
			Success:  false,
			Message:  "Unable to cancel (DB unavailable)",
			Fallback: fallback.DataFor("cancel_appointment", s.nowFn()),
		}
	}
	if count == 0 {
		return CancelResult{Success: false, Message: "No matching appointment found to cancel"}
	}

	s.logger.Info("booking: appointments cancelled", "count", count, "appointment_id", appointmentID)
	return CancelResult{Success: true, Message: "Appointment cancelled successfully", CancelledCount: count}
}

// nextAppointmentID derives a human-readable confirmation number from the
// clock, with a process-local counter folded in so bookings inside the same
// millisecond still get distinct IDs.
func (s *Service) nextAppointmentID() string {
	n := s.nowFn().UnixMilli() + s.seq.Add(1)
	return fmt.Sprintf("SAL-%06d", n%1000000)
}
