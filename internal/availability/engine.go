// Package availability computes bookable salon slots across stylists and
// days. Slots are ephemeral: every check recomputes them from current
// appointment data, and nothing here is cached or persisted.
//
// An appointment occupies exactly one (hour, stylist) grid cell regardless
// of its real duration; a two-hour keratin treatment still blocks a single
// hour. Modeling true durations would change observable availability and is
// left as a future enhancement.
package availability

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/salon-voice-agent/internal/appointments"
	"github.com/wolfman30/salon-voice-agent/internal/stylists"
	"github.com/wolfman30/salon-voice-agent/internal/timeparse"
	"github.com/wolfman30/salon-voice-agent/pkg/logging"
)

var tracer = otel.Tracer("salon.internal.availability")

const (
	// scanDays is how many consecutive calendar days one check covers.
	scanDays = 7
	// maxSlots caps the returned slot list.
	maxSlots = 50
	// syntheticDays is how many days the synthetic generator fills.
	syntheticDays = 3
)

// workingHours is the bookable hour grid, 9:00 through 18:00.
var workingHours = []int{9, 10, 11, 12, 13, 14, 15, 16, 17, 18}

// syntheticHours is the pool the synthetic generator draws from.
var syntheticHours = []int{9, 10, 11, 12, 13, 14, 15, 16, 17}

// SlotSource reads booked occupancy for a day.
type SlotSource interface {
	BookedSlots(ctx context.Context, day, service, stylist string) ([]appointments.BookedSlot, error)
}

// RosterSource lists stylists seen in appointment history. An empty list
// means the salon has no data yet, which routes the check into the
// synthetic generator; only a storage error substitutes the house roster.
type RosterSource interface {
	DistinctStylists(ctx context.Context) ([]string, error)
}

// Slot is one open (date, hour, stylist) cell.
type Slot struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Hour      int    `json:"hour24"`
	Stylist   string `json:"stylist"`
	Available bool   `json:"available"`
	SlotID    string `json:"slotId"`
	Service   string `json:"service"`
	Synthetic bool   `json:"isDefault,omitempty"`
}

// Result is a full availability response.
type Result struct {
	Slots             []Slot            `json:"availableSlots"`
	GroupedByDate     map[string][]Slot `json:"groupedByDate"`
	DateRequested     string            `json:"dateRequested"`
	DaysChecked       int               `json:"daysChecked"`
	TotalAvailable    int               `json:"totalAvailable"`
	NextAvailableDate string            `json:"nextAvailableDate"`
	Message           string            `json:"message"`
	Synthetic         bool              `json:"synthetic,omitempty"`
}

// Engine computes availability from appointment occupancy and the stylist
// roster.
type Engine struct {
	slots  SlotSource
	roster RosterSource
	logger *logging.Logger
	nowFn  func() time.Time
	rng    *rand.Rand
}

// NewEngine creates an availability engine.
func NewEngine(slots SlotSource, roster RosterSource, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		slots:  slots,
		roster: roster,
		logger: logger,
		nowFn:  time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Check computes open slots for the 7 days starting at the requested date
// (default today), honoring optional service and stylist filters. When the
// full scan produces nothing it synthesizes provisional slots so the agent
// always has times to offer.
func (e *Engine) Check(ctx context.Context, dateStr, service, stylist string) Result {
	ctx, span := tracer.Start(ctx, "availability.check")
	defer span.End()
	span.SetAttributes(
		attribute.String("salon.service", service),
		attribute.String("salon.stylist", stylist),
	)

	now := e.nowFn()
	target, ok := timeparse.ParseDate(dateStr, now)
	if !ok {
		target = now
	}

	days := make([]string, 0, scanDays)
	var all []Slot
	for i := 0; i < scanDays; i++ {
		day := appointments.DayKey(target.AddDate(0, 0, i))
		days = append(days, day)
		all = append(all, e.slotsForDay(ctx, day, service, stylist)...)
	}

	synthetic := false
	if len(all) == 0 {
		all = e.synthesize(target, service, stylist)
		synthetic = true
	}

	grouped := make(map[string][]Slot)
	for _, slot := range all {
		grouped[slot.Date] = append(grouped[slot.Date], slot)
	}

	total := len(all)
	capped := all
	if len(capped) > maxSlots {
		capped = capped[:maxSlots]
	}

	message := fmt.Sprintf("Found %d available slots in the next %d days", total, scanDays)
	if total == 0 {
		message = fmt.Sprintf("No available slots found in the next %d days", scanDays)
	} else if synthetic {
		message = fmt.Sprintf("Found %d provisional slots; the salon will confirm exact times", total)
	}

	return Result{
		Slots:             capped,
		GroupedByDate:     grouped,
		DateRequested:     appointments.DayKey(target),
		DaysChecked:       scanDays,
		TotalAvailable:    total,
		NextAvailableDate: days[0],
		Message:           message,
		Synthetic:         synthetic,
	}
}

// slotsForDay walks the hour grid for every working stylist and keeps the
// cells no scheduled/confirmed appointment occupies. A storage failure
// reads as an empty booked set: the call must keep moving.
func (e *Engine) slotsForDay(ctx context.Context, day, service, stylist string) []Slot {
	booked, err := e.slots.BookedSlots(ctx, day, service, stylist)
	if err != nil {
		e.logger.Warn("availability: booked slot lookup failed", "day", day, "error", err)
		booked = nil
	}

	roster, err := e.roster.DistinctStylists(ctx)
	if err != nil {
		e.logger.Warn("availability: stylist lookup failed", "error", err)
		roster = stylists.DefaultNames()
	}
	if stylist != "" {
		filtered := roster[:0]
		for _, name := range roster {
			if name == stylist {
				filtered = append(filtered, name)
			}
		}
		roster = filtered
	}

	var out []Slot
	for _, hour := range workingHours {
		for _, name := range roster {
			if isBooked(booked, hour, name) {
				continue
			}
			out = append(out, newSlot(day, hour, name, service, false))
		}
	}
	return out
}

// isBooked reports whether any appointment occupies the (hour, stylist)
// cell. Collision is hour-granular on purpose.
func isBooked(booked []appointments.BookedSlot, hour int, stylist string) bool {
	for _, b := range booked {
		if b.Time.Hour() == hour && b.Stylist == stylist {
			return true
		}
	}
	return false
}

// synthesize produces 2-3 provisional slots per day for the next few days,
// drawing each day's hours without replacement so a single pass never
// repeats a time.
func (e *Engine) synthesize(target time.Time, service, stylist string) []Slot {
	roster := []string{"Riya Sharma", "Aditi Verma", "Priya Singh", "Neha Gupta", "Anjali Patel"}
	if stylist != "" {
		roster = []string{stylist}
	}

	var out []Slot
	for offset := 0; offset < syntheticDays; offset++ {
		day := appointments.DayKey(target.AddDate(0, 0, offset))
		hours := append([]int(nil), syntheticHours...)
		perDay := 2 + e.rng.Intn(2)
		for i := 0; i < perDay && len(hours) > 0; i++ {
			pick := e.rng.Intn(len(hours))
			hour := hours[pick]
			hours = append(hours[:pick], hours[pick+1:]...)
			name := roster[e.rng.Intn(len(roster))]
			out = append(out, newSlot(day, hour, name, service, true))
		}
	}
	return out
}

func newSlot(day string, hour int, stylist, service string, synthetic bool) Slot {
	prefix := "slot"
	if synthetic {
		prefix = "default"
	}
	if service == "" {
		service = "Any Service"
	}
	return Slot{
		Date:      day,
		Time:      timeparse.FormatHour(hour),
		Hour:      hour,
		Stylist:   stylist,
		Available: true,
		SlotID: fmt.Sprintf("%s_%s_%d_%s",
			prefix,
			strings.ReplaceAll(day, "-", ""),
			hour,
			strings.ReplaceAll(stylist, " ", "_"),
		),
		Service:   service,
		Synthetic: synthetic,
	}
}
