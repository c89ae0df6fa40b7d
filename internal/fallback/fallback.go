// Package fallback supplies canned substitute payloads per operation so the
// voice agent always has something to speak when storage is unreachable.
// Data here is only served on error paths, never speculatively.
package fallback

import "time"

// DataFor returns the substitute payload for an operation name. Unknown
// operations get a generic apology the agent can read out.
func DataFor(operation string, now time.Time) map[string]any {
	today := now.Format("2006-01-02")
	switch operation {
	case "get_appointment_details":
		return map[string]any{
			"appointmentId": "SAL-1023",
			"service":       "Hair Spa",
			"stylist":       "Aditi",
			"time":          "4:00 PM",
			"status":        "Confirmed",
		}
	case "get_available_stylists":
		return map[string]any{
			"availableStylists": []map[string]any{
				{"name": "Riya Sharma", "available": true},
				{"name": "Aditi Verma", "available": true},
			},
		}
	case "get_service_prices":
		return map[string]any{
			"services": []map[string]any{
				{"name": "Haircut", "price": "$40"},
				{"name": "Hair Spa", "price": "$75"},
			},
		}
	case "check_availability":
		return map[string]any{
			"availableSlots": []map[string]any{
				{"date": today, "time": "10:00 AM", "stylist": "Riya Sharma", "available": true},
				{"date": today, "time": "2:00 PM", "stylist": "Aditi Verma", "available": true},
			},
		}
	default:
		return map[string]any{
			"message": "Please try again or contact salon directly",
		}
	}
}
