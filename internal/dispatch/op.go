package dispatch

// Op identifies one of the business operations the voice agent can invoke
// mid-call. Unknown function names map to OpUnrecognized, which keeps the
// raw string around for diagnostics.
type Op int

const (
	OpUnrecognized Op = iota
	OpGetAppointmentDetails
	OpGetAvailableStylists
	OpGetServicePrices
	OpCheckAvailability
	OpBookAppointment
	OpUpdateCustomerInfo
	OpCancelAppointment
	OpGetCustomerHistory
)

var opNames = map[Op]string{
	OpGetAppointmentDetails: "get_appointment_details",
	OpGetAvailableStylists:  "get_available_stylists",
	OpGetServicePrices:      "get_service_prices",
	OpCheckAvailability:     "check_availability",
	OpBookAppointment:       "book_appointment",
	OpUpdateCustomerInfo:    "update_customer_info",
	OpCancelAppointment:     "cancel_appointment",
	OpGetCustomerHistory:    "get_customer_history",
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

// ParseOp resolves a function name to its operation.
func ParseOp(name string) Op {
	if op, ok := opsByName[name]; ok {
		return op
	}
	return OpUnrecognized
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unrecognized"
}

// FunctionNames is the fixed list of valid function names, in wire order.
// Returned verbatim to the caller on any routing failure.
func FunctionNames() []string {
	return []string{
		"get_appointment_details",
		"get_available_stylists",
		"get_service_prices",
		"check_availability",
		"book_appointment",
		"update_customer_info",
		"cancel_appointment",
		"get_customer_history",
	}
}
