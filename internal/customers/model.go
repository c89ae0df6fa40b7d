package customers

import "time"

// Customer is a salon customer keyed externally by phone number. Phone is
// the only identity the voice agent ever has, so it is unique and
// find-or-create is the sole creation path.
type Customer struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email,omitempty"`
	PreferredStylist string    `json:"preferred_stylist,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// FieldPatch is a sparse update applied to a customer. Only non-empty
// fields are written.
type FieldPatch struct {
	Name             string
	Email            string
	PreferredStylist string
	Notes            string
}

// IsEmpty reports whether the patch carries no fields at all.
func (p FieldPatch) IsEmpty() bool {
	return p.Name == "" && p.Email == "" && p.PreferredStylist == "" && p.Notes == ""
}

// VisitStats aggregates a customer's completed appointment history.
type VisitStats struct {
	TotalVisits int
	TotalSpent  float64
}

// ServiceCount pairs a service name with how often the customer booked it.
type ServiceCount struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}
