package dispatch

import (
	"fmt"
	"strings"

	"github.com/wolfman30/salon-voice-agent/internal/booking"
	"github.com/wolfman30/salon-voice-agent/internal/customers"
)

// The agent runtime sends parameters as a loose JSON object. Each operation
// gets an explicit schema decoded at the dispatcher boundary so handlers
// never touch the raw map.

// DetailParams narrows an appointment detail lookup.
type DetailParams struct {
	AppointmentID string
	CustomerName  string
	CustomerPhone string
}

// StylistParams carries the optional date for a stylist availability check.
type StylistParams struct {
	Date string
}

// AvailabilityParams carries the slot-scan filters.
type AvailabilityParams struct {
	Date    string
	Service string
	Stylist string
}

// BookParams carries a booking request. Phone and service are required and
// validated by the booking service itself.
type BookParams struct {
	CustomerName  string
	CustomerPhone string
	Service       string
	Stylist       string
	Date          string
	Time          string
	Notes         string
}

// UpdateParams carries a sparse customer patch keyed by phone.
type UpdateParams struct {
	CustomerPhone    string
	Name             string
	Email            string
	PreferredStylist string
	Notes            string
}

// CancelParams identifies appointments to cancel. Both fields optional;
// present fields are AND-combined.
type CancelParams struct {
	AppointmentID string
	CustomerPhone string
}

// HistoryParams identifies the customer whose history is requested.
type HistoryParams struct {
	CustomerPhone string
}

// stringParam reads a parameter leniently: strings pass through, numbers
// are rendered, anything else is treated as absent. Phone numbers in
// particular arrive as bare JSON numbers from some agent runtimes.
func stringParam(params map[string]any, key string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case bool:
		return fmt.Sprintf("%v", t)
	default:
		return ""
	}
}

func decodeDetailParams(params map[string]any) DetailParams {
	return DetailParams{
		AppointmentID: stringParam(params, "appointment_id"),
		CustomerName:  stringParam(params, "customer_name"),
		CustomerPhone: stringParam(params, "customer_phone"),
	}
}

func decodeStylistParams(params map[string]any) StylistParams {
	return StylistParams{Date: stringParam(params, "date")}
}

func decodeAvailabilityParams(params map[string]any) AvailabilityParams {
	return AvailabilityParams{
		Date:    stringParam(params, "date"),
		Service: stringParam(params, "service"),
		Stylist: stringParam(params, "stylist"),
	}
}

func decodeBookParams(params map[string]any) BookParams {
	return BookParams{
		CustomerName:  stringParam(params, "customer_name"),
		CustomerPhone: stringParam(params, "customer_phone"),
		Service:       stringParam(params, "service"),
		Stylist:       stringParam(params, "stylist"),
		Date:          stringParam(params, "date"),
		Time:          stringParam(params, "time"),
		Notes:         stringParam(params, "notes"),
	}
}

func decodeUpdateParams(params map[string]any) UpdateParams {
	return UpdateParams{
		CustomerPhone:    stringParam(params, "customer_phone"),
		Name:             stringParam(params, "name"),
		Email:            stringParam(params, "email"),
		PreferredStylist: stringParam(params, "preferred_stylist"),
		Notes:            stringParam(params, "notes"),
	}
}

func decodeCancelParams(params map[string]any) CancelParams {
	return CancelParams{
		AppointmentID: stringParam(params, "appointment_id"),
		CustomerPhone: stringParam(params, "customer_phone"),
	}
}

func decodeHistoryParams(params map[string]any) HistoryParams {
	return HistoryParams{CustomerPhone: stringParam(params, "customer_phone")}
}

func (p BookParams) request(callID string) booking.BookRequest {
	return booking.BookRequest{
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		Service:       p.Service,
		Stylist:       p.Stylist,
		Date:          p.Date,
		Time:          p.Time,
		Notes:         p.Notes,
		CallID:        callID,
	}
}

func (p UpdateParams) patch() customers.FieldPatch {
	return customers.FieldPatch{
		Name:             p.Name,
		Email:            p.Email,
		PreferredStylist: p.PreferredStylist,
		Notes:            p.Notes,
	}
}
