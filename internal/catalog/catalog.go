// Package catalog provides the salon's price, duration, and category lookup
// tables. Prices are sourced from the static menu with flat defaults for
// services the salon has never recorded; aggregated history can override
// ranges when present.
package catalog

import (
	"fmt"
	"strings"
)

// DefaultPrice is charged for any service missing from the menu.
const DefaultPrice = 50.00

// servicePrices is the standard menu, keyed by normalized service name.
var servicePrices = map[string]float64{
	"haircut":    40.00,
	"hair spa":   75.00,
	"keratin":    120.00,
	"hair color": 85.00,
	"blow dry":   30.00,
	"manicure":   25.00,
	"pedicure":   35.00,
	"facial":     50.00,
	"threading":  15.00,
	"waxing":     40.00,
}

// defaultPriceRanges holds min/max defaults used when no booking history
// exists for a service.
var defaultPriceRanges = map[string][2]float64{
	"haircut":    {35, 45},
	"hair spa":   {70, 85},
	"keratin":    {110, 130},
	"hair color": {75, 95},
	"blow dry":   {25, 35},
}

var serviceDurations = map[string]string{
	"haircut":    "30-45 minutes",
	"hair spa":   "60 minutes",
	"keratin":    "90-120 minutes",
	"hair color": "90-120 minutes",
	"blow dry":   "30 minutes",
	"manicure":   "45 minutes",
	"pedicure":   "60 minutes",
	"facial":     "60 minutes",
	"threading":  "15 minutes",
	"waxing":     "30 minutes",
}

var serviceCategories = map[string]string{
	"haircut":    "Basic",
	"blow dry":   "Styling",
	"hair spa":   "Treatment",
	"keratin":    "Treatment",
	"hair color": "Coloring",
	"manicure":   "Nails",
	"pedicure":   "Nails",
	"facial":     "Skincare",
	"threading":  "Skincare",
	"waxing":     "Skincare",
}

// stylistSpecialties maps a first-name fragment to the stylist's specialty.
var stylistSpecialties = map[string]string{
	"riya":   "Hair Coloring",
	"aditi":  "Hair Spa",
	"priya":  "Haircut & Styling",
	"neha":   "Keratin Treatment",
	"anjali": "Hair Color Correction",
	"sonia":  "Bridal Makeup",
	"maya":   "Facial Treatments",
	"kavita": "Hair Extensions",
}

var stylistExperience = map[string]string{
	"riya":   "5 years",
	"aditi":  "7 years",
	"priya":  "3 years",
	"neha":   "4 years",
	"anjali": "6 years",
	"sonia":  "8 years",
	"maya":   "4 years",
	"kavita": "9 years",
}

// AllServices lists the full menu in presentation order.
func AllServices() []string {
	return []string{
		"Haircut", "Hair Spa", "Keratin", "Hair Color", "Blow Dry",
		"Manicure", "Pedicure", "Facial", "Threading", "Waxing",
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ServicePrice returns the menu price for a service, falling back to
// DefaultPrice for unknown names.
func ServicePrice(service string) float64 {
	if service == "" {
		return DefaultPrice
	}
	if price, ok := servicePrices[normalize(service)]; ok {
		return price
	}
	return DefaultPrice
}

// DefaultPriceRange returns the min/max default prices for a service.
func DefaultPriceRange(service string) (min, max float64) {
	if r, ok := defaultPriceRanges[normalize(service)]; ok {
		return r[0], r[1]
	}
	return 40, 60
}

// ServiceDuration returns the expected duration text for a service.
func ServiceDuration(service string) string {
	if d, ok := serviceDurations[normalize(service)]; ok {
		return d
	}
	return "60 minutes"
}

// ServiceCategory returns the menu category for a service.
func ServiceCategory(service string) string {
	if c, ok := serviceCategories[normalize(service)]; ok {
		return c
	}
	return "General"
}

// StylistSpecialty returns the specialty on file for a stylist name.
func StylistSpecialty(stylist string) string {
	s := normalize(stylist)
	for key, specialty := range stylistSpecialties {
		if strings.Contains(s, key) {
			return specialty
		}
	}
	return "General Styling"
}

// StylistExperience returns the experience on file for a stylist name.
func StylistExperience(stylist string) string {
	s := normalize(stylist)
	for key, exp := range stylistExperience {
		if strings.Contains(s, key) {
			return exp
		}
	}
	return "2+ years"
}

// PopularityLevel buckets a booking count into a spoken popularity label.
func PopularityLevel(bookings int) string {
	switch {
	case bookings > 100:
		return "Very Popular"
	case bookings > 50:
		return "Popular"
	case bookings > 20:
		return "Medium"
	default:
		return "Low"
	}
}

// FormatPrice renders a price as a USD currency string, e.g. "$75.00".
func FormatPrice(price float64) string {
	if price < 0 {
		price = 0
	}
	return fmt.Sprintf("$%.2f", price)
}
