// Package dispatch routes mid-call function invocations from the voice
// agent to the business handlers and shapes their responses. Routing is a
// fixed table from operation enum to handler, built once at construction;
// every storage failure inside a handler degrades to defaults or canned
// fallback data so the agent always has something to say.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/salon-voice-agent/internal/appointments"
	"github.com/wolfman30/salon-voice-agent/internal/availability"
	"github.com/wolfman30/salon-voice-agent/internal/booking"
	"github.com/wolfman30/salon-voice-agent/internal/catalog"
	"github.com/wolfman30/salon-voice-agent/internal/customers"
	"github.com/wolfman30/salon-voice-agent/internal/fallback"
	"github.com/wolfman30/salon-voice-agent/internal/stylists"
	"github.com/wolfman30/salon-voice-agent/internal/timeparse"
	"github.com/wolfman30/salon-voice-agent/pkg/logging"
)

var tracer = otel.Tracer("salon.internal.dispatch")

const recentAppointmentLimit = 5

// AvailabilityChecker computes open slots.
type AvailabilityChecker interface {
	Check(ctx context.Context, dateStr, service, stylist string) availability.Result
}

// Booker books and cancels appointments.
type Booker interface {
	Book(ctx context.Context, req booking.BookRequest) booking.BookResult
	Cancel(ctx context.Context, appointmentID, customerPhone string) booking.CancelResult
}

// CustomerDirectory reads and patches customer records.
type CustomerDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*customers.Customer, error)
	UpdateFields(ctx context.Context, phone string, patch customers.FieldPatch) ([]string, error)
	CompletedVisitStats(ctx context.Context, customerID string) (customers.VisitStats, error)
	LastVisit(ctx context.Context, customerID string) (time.Time, error)
	TopServices(ctx context.Context, customerID string, limit int) ([]customers.ServiceCount, error)
}

// AppointmentReader serves the read-only appointment projections.
type AppointmentReader interface {
	FindDetails(ctx context.Context, filter appointments.DetailFilter) ([]appointments.Detail, error)
	ServicePriceStats(ctx context.Context) ([]appointments.ServiceStats, error)
	RecentForCustomer(ctx context.Context, customerID string, limit int) ([]appointments.Appointment, error)
}

// StylistFinder resolves the stylist roster for a date.
type StylistFinder interface {
	Available(ctx context.Context, date string) stylists.Roster
}

type handlerFunc func(ctx context.Context, params map[string]any, callID string) (any, error)

// Dispatcher routes invocations to handlers.
type Dispatcher struct {
	availability AvailabilityChecker
	booking      Booker
	customers    CustomerDirectory
	appointments AppointmentReader
	stylists     StylistFinder
	logger       *logging.Logger
	nowFn        func() time.Time
	table        map[Op]handlerFunc
}

// NewDispatcher wires the handlers into the dispatch table.
func NewDispatcher(
	checker AvailabilityChecker,
	booker Booker,
	customerDir CustomerDirectory,
	appointmentReader AppointmentReader,
	stylistFinder StylistFinder,
	logger *logging.Logger,
) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Dispatcher{
		availability: checker,
		booking:      booker,
		customers:    customerDir,
		appointments: appointmentReader,
		stylists:     stylistFinder,
		logger:       logger,
		nowFn:        time.Now,
	}
	d.table = map[Op]handlerFunc{
		OpGetAppointmentDetails: d.handleAppointmentDetails,
		OpGetAvailableStylists:  d.handleAvailableStylists,
		OpGetServicePrices:      d.handleServicePrices,
		OpCheckAvailability:     d.handleCheckAvailability,
		OpBookAppointment:       d.handleBook,
		OpUpdateCustomerInfo:    d.handleUpdateCustomer,
		OpCancelAppointment:     d.handleCancel,
		OpGetCustomerHistory:    d.handleCustomerHistory,
	}
	return d
}

// Invoke runs the handler for op. A handler panic is converted to an error
// so the HTTP layer can return the internal-error envelope with fallback
// data instead of crashing the call.
func (d *Dispatcher) Invoke(ctx context.Context, op Op, params map[string]any, callID string) (result any, err error) {
	ctx, span := tracer.Start(ctx, "dispatch.invoke")
	span.SetAttributes(attribute.String("function", op.String()))
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("dispatch: %s: %v", op, p)
		}
	}()

	h, ok := d.table[op]
	if !ok {
		return nil, fmt.Errorf("dispatch: no handler for %q", op)
	}
	return h(ctx, params, callID)
}

func (d *Dispatcher) handleAppointmentDetails(ctx context.Context, params map[string]any, _ string) (any, error) {
	p := decodeDetailParams(params)
	details, err := d.appointments.FindDetails(ctx, appointments.DetailFilter{
		AppointmentID: p.AppointmentID,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
	})
	if err != nil {
		d.logger.Warn("dispatch: appointment detail lookup failed", "error", err)
		return map[string]any{
			"success":  false,
			"message":  "DB unavailable - returning fallback",
			"fallback": fallback.DataFor(OpGetAppointmentDetails.String(), d.nowFn()),
		}, nil
	}
	if len(details) == 0 {
		return map[string]any{
			"success":    false,
			"message":    "No appointments found",
			"suggestion": "Provide appointment ID or customer details",
		}, nil
	}

	rows := make([]map[string]any, 0, len(details))
	for _, det := range details {
		rows = append(rows, map[string]any{
			"appointmentId": det.AppointmentID,
			"service":       det.Service,
			"stylist":       det.Stylist,
			"time":          timeparse.FormatDateTime(det.AppointmentTime),
			"status":        det.Status,
			"duration":      catalog.ServiceDuration(det.Service),
			"price":         catalog.FormatPrice(det.Price),
			"customerName":  det.CustomerName,
			"customerPhone": det.CustomerPhone,
			"notes":         det.Notes,
		})
	}
	return map[string]any{"success": true, "appointments": rows, "count": len(rows)}, nil
}

func (d *Dispatcher) handleAvailableStylists(ctx context.Context, params map[string]any, _ string) (any, error) {
	p := decodeStylistParams(params)
	roster := d.stylists.Available(ctx, p.Date)

	dateRequested := p.Date
	if dateRequested == "" {
		dateRequested = "Any date"
	}
	return map[string]any{
		"success":           true,
		"availableStylists": roster.Stylists,
		"count":             len(roster.Stylists),
		"dateRequested":     dateRequested,
		"source":            roster.Source,
	}, nil
}

func (d *Dispatcher) handleServicePrices(ctx context.Context, _ map[string]any, _ string) (any, error) {
	stats := readOr(d.logger, "service price stats", func() ([]appointments.ServiceStats, error) {
		return d.appointments.ServicePriceStats(ctx)
	}, nil)

	services := make([]map[string]any, 0, len(stats))
	seen := make(map[string]bool, len(stats))
	for _, st := range stats {
		seen[st.Service] = true
		names := st.Stylists
		if names == nil {
			names = []string{}
		}
		services = append(services, map[string]any{
			"name":              st.Service,
			"minPrice":          catalog.FormatPrice(st.MinPrice),
			"maxPrice":          catalog.FormatPrice(st.MaxPrice),
			"avgPrice":          catalog.FormatPrice(st.AvgPrice),
			"duration":          catalog.ServiceDuration(st.Service),
			"category":          catalog.ServiceCategory(st.Service),
			"popularity":        catalog.PopularityLevel(st.TotalBookings),
			"availableStylists": names,
			"totalBookings":     st.TotalBookings,
		})
	}

	// Services never booked still get a catalog entry with default pricing.
	for _, svc := range catalog.AllServices() {
		if seen[svc] {
			continue
		}
		min, max := catalog.DefaultPriceRange(svc)
		services = append(services, map[string]any{
			"name":              svc,
			"minPrice":          catalog.FormatPrice(min),
			"maxPrice":          catalog.FormatPrice(max),
			"avgPrice":          catalog.FormatPrice(min),
			"duration":          catalog.ServiceDuration(svc),
			"category":          catalog.ServiceCategory(svc),
			"popularity":        "Medium",
			"availableStylists": []string{"All Stylists"},
			"totalBookings":     0,
		})
	}

	return map[string]any{
		"success":     true,
		"services":    services,
		"count":       len(services),
		"lastUpdated": d.nowFn().Format("2006-01-02"),
	}, nil
}

func (d *Dispatcher) handleCheckAvailability(ctx context.Context, params map[string]any, _ string) (any, error) {
	p := decodeAvailabilityParams(params)
	res := d.availability.Check(ctx, p.Date, p.Service, p.Stylist)
	return struct {
		Success bool `json:"success"`
		availability.Result
	}{Success: true, Result: res}, nil
}

func (d *Dispatcher) handleBook(ctx context.Context, params map[string]any, callID string) (any, error) {
	p := decodeBookParams(params)
	return d.booking.Book(ctx, p.request(callID)), nil
}

func (d *Dispatcher) handleUpdateCustomer(ctx context.Context, params map[string]any, _ string) (any, error) {
	p := decodeUpdateParams(params)
	if p.CustomerPhone == "" {
		return map[string]any{"success": false, "message": "Customer phone is required"}, nil
	}

	c, err := d.customers.FindByPhone(ctx, p.CustomerPhone)
	if errors.Is(err, customers.ErrNotFound) {
		return map[string]any{"success": false, "message": "Customer not found"}, nil
	}
	if err != nil {
		d.logger.Warn("dispatch: customer lookup failed", "error", err)
		return map[string]any{"success": false, "message": "Unable to update - customer DB not available"}, nil
	}

	cols, err := d.customers.UpdateFields(ctx, p.CustomerPhone, p.patch())
	if errors.Is(err, customers.ErrNothingToUpdate) {
		return map[string]any{"success": false, "message": "No information to update"}, nil
	}
	if err != nil {
		d.logger.Warn("dispatch: customer update failed", "error", err)
		return map[string]any{"success": false, "message": "Failed to update customer info (DB error)"}, nil
	}

	return map[string]any{
		"success":       true,
		"message":       "Customer information updated successfully",
		"customerId":    c.ID,
		"updatedFields": cols,
	}, nil
}

func (d *Dispatcher) handleCancel(ctx context.Context, params map[string]any, _ string) (any, error) {
	p := decodeCancelParams(params)
	return d.booking.Cancel(ctx, p.AppointmentID, p.CustomerPhone), nil
}

func (d *Dispatcher) handleCustomerHistory(ctx context.Context, params map[string]any, _ string) (any, error) {
	p := decodeHistoryParams(params)
	if p.CustomerPhone == "" {
		return map[string]any{"success": false, "message": "Customer phone is required"}, nil
	}

	c, err := d.customers.FindByPhone(ctx, p.CustomerPhone)
	if errors.Is(err, customers.ErrNotFound) {
		return map[string]any{"success": false, "message": "Customer not found"}, nil
	}
	if err != nil {
		d.logger.Warn("dispatch: customer history lookup failed", "error", err)
		return map[string]any{
			"success":  false,
			"message":  "DB unavailable",
			"fallback": fallback.DataFor(OpGetCustomerHistory.String(), d.nowFn()),
		}, nil
	}

	// Each aggregate degrades independently; a dead appointments table
	// still returns the customer's contact card.
	stats := readOr(d.logger, "visit stats", func() (customers.VisitStats, error) {
		return d.customers.CompletedVisitStats(ctx, c.ID)
	}, customers.VisitStats{})
	last := readOr(d.logger, "last visit", func() (time.Time, error) {
		return d.customers.LastVisit(ctx, c.ID)
	}, time.Time{})
	favorites := readOr(d.logger, "top services", func() ([]customers.ServiceCount, error) {
		return d.customers.TopServices(ctx, c.ID, 3)
	}, nil)
	recent := readOr(d.logger, "recent appointments", func() ([]appointments.Appointment, error) {
		return d.appointments.RecentForCustomer(ctx, c.ID, recentAppointmentLimit)
	}, nil)

	recentRows := make([]map[string]any, 0, len(recent))
	for _, a := range recent {
		recentRows = append(recentRows, map[string]any{
			"appointmentId": a.AppointmentID,
			"service":       a.Service,
			"stylist":       a.Stylist,
			"time":          timeparse.FormatDateTime(a.AppointmentTime),
			"status":        a.Status,
			"price":         catalog.FormatPrice(a.Price),
		})
	}
	if favorites == nil {
		favorites = []customers.ServiceCount{}
	}

	lastVisit := "Never"
	if !last.IsZero() {
		lastVisit = timeparse.FormatDateTime(last)
	}

	return map[string]any{
		"success": true,
		"customer": map[string]any{
			"name":             c.Name,
			"phone":            c.Phone,
			"email":            c.Email,
			"preferredStylist": c.PreferredStylist,
			"totalVisits":      stats.TotalVisits,
			"totalSpent":       catalog.FormatPrice(stats.TotalSpent),
			"lastVisit":        lastVisit,
			"customerSince":    timeparse.FormatDateTime(c.CreatedAt),
		},
		"recentAppointments": recentRows,
		"favoriteServices":   favorites,
		"notes":              c.Notes,
	}, nil
}
