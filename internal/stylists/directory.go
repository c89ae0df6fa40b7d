// Package stylists resolves the working roster from booking history, with a
// hard-coded house roster standing in when the salon has no data yet.
package stylists

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/wolfman30/salon-voice-agent/internal/catalog"
	"github.com/wolfman30/salon-voice-agent/pkg/logging"
)

// busyThreshold is the scheduled/confirmed appointment count at which a
// stylist is reported as unavailable for a day.
const busyThreshold = 5

// HistorySource reads roster and occupancy data from appointment history.
type HistorySource interface {
	DistinctStylists(ctx context.Context) ([]string, error)
	PreferredStylists(ctx context.Context) ([]string, error)
	BusyCounts(ctx context.Context, day string) (map[string]int, error)
}

// Stylist is one roster entry with the metadata the agent reads out.
type Stylist struct {
	Name       string `json:"name"`
	Available  bool   `json:"available"`
	Rating     string `json:"rating"`
	Specialty  string `json:"specialty"`
	Experience string `json:"experience"`
	BusySlots  int    `json:"busySlots"`
}

// Roster is a resolved stylist list plus where it came from.
type Roster struct {
	Stylists []Stylist
	Source   string // "database" or "default_data"
}

// Directory resolves stylists for availability checks and lookups.
type Directory struct {
	source HistorySource
	logger *logging.Logger
}

// NewDirectory creates a stylist directory over appointment history.
func NewDirectory(source HistorySource, logger *logging.Logger) *Directory {
	if logger == nil {
		logger = logging.Default()
	}
	return &Directory{source: source, logger: logger}
}

// DefaultNames is the fallback roster used for slot generation when history
// holds no stylists at all.
func DefaultNames() []string {
	return []string{"Riya Sharma", "Aditi Verma", "Priya Singh", "Neha Gupta"}
}

// Names resolves the working stylist names: appointment history first, then
// customer preferences, then the house default. Storage errors degrade to
// the next source rather than failing.
func (d *Directory) Names(ctx context.Context) []string {
	names, err := d.source.DistinctStylists(ctx)
	if err != nil {
		d.logger.Warn("stylists: history lookup failed", "error", err)
	}
	if len(names) > 0 {
		return names
	}

	names, err = d.source.PreferredStylists(ctx)
	if err != nil {
		d.logger.Warn("stylists: preference lookup failed", "error", err)
	}
	if len(names) > 0 {
		return names
	}

	return DefaultNames()
}

// Available resolves the roster with per-date availability annotations for
// the get_available_stylists operation. date may be empty.
func (d *Directory) Available(ctx context.Context, date string) Roster {
	names, err := d.source.DistinctStylists(ctx)
	if err != nil {
		d.logger.Warn("stylists: history lookup failed", "error", err)
	}
	if len(names) == 0 {
		if prefs, err := d.source.PreferredStylists(ctx); err == nil {
			names = prefs
		} else {
			d.logger.Warn("stylists: preference lookup failed", "error", err)
		}
	}

	if len(names) == 0 {
		return Roster{Stylists: defaultProfiles(date), Source: "default_data"}
	}

	busy := map[string]int{}
	if date != "" {
		if counts, err := d.source.BusyCounts(ctx, date); err == nil {
			busy = counts
		} else {
			d.logger.Warn("stylists: busy counts unavailable", "date", date, "error", err)
		}
	}

	out := make([]Stylist, 0, len(names))
	for _, name := range names {
		slots := busy[name]
		out = append(out, Stylist{
			Name:       name,
			Available:  slots < busyThreshold,
			Rating:     ratingFor(name),
			Specialty:  catalog.StylistSpecialty(name),
			Experience: catalog.StylistExperience(name),
			BusySlots:  slots,
		})
	}
	return Roster{Stylists: out, Source: "database"}
}

// ratingFor derives a stable rating in the 4.5-5.0 band from the name, so
// repeated calls for the same stylist agree.
func ratingFor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("%.1f", 4.5+float64(h.Sum32()%6)/10)
}

// defaultProfiles is the full house roster served when no history exists.
// With a date, weekday/weekend shading decides availability from the canned
// busy counts.
func defaultProfiles(date string) []Stylist {
	profiles := []Stylist{
		{Name: "Riya Sharma", Available: true, Rating: "4.8", Specialty: "Hair Coloring", Experience: "5 years", BusySlots: 0},
		{Name: "Aditi Verma", Available: true, Rating: "4.9", Specialty: "Hair Spa", Experience: "7 years", BusySlots: 0},
		{Name: "Priya Singh", Available: false, Rating: "4.7", Specialty: "Haircut & Styling", Experience: "3 years", BusySlots: 6},
		{Name: "Neha Gupta", Available: true, Rating: "4.6", Specialty: "Keratin Treatment", Experience: "4 years", BusySlots: 0},
		{Name: "Anjali Patel", Available: true, Rating: "4.8", Specialty: "Hair Color Correction", Experience: "6 years", BusySlots: 0},
		{Name: "Sonia Kapoor", Available: true, Rating: "4.5", Specialty: "Bridal Makeup", Experience: "8 years", BusySlots: 0},
		{Name: "Maya Reddy", Available: true, Rating: "4.7", Specialty: "Facial Treatments", Experience: "4 years", BusySlots: 0},
		{Name: "Kavita Joshi", Available: false, Rating: "4.9", Specialty: "Hair Extensions", Experience: "9 years", BusySlots: 8},
	}

	if date != "" {
		if day, err := time.Parse("2006-01-02", date); err == nil {
			weekend := day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
			for i := range profiles {
				if weekend {
					profiles[i].Available = profiles[i].BusySlots < 8
				} else {
					profiles[i].Available = profiles[i].BusySlots < 10
				}
			}
		}
	}
	return profiles
}
