// Package timeparse resolves the loosely formatted date and time strings a
// voice agent extracts mid-call ("4pm", "16:00", "tomorrow") into concrete
// timestamps. Parsing never fails hard: callers fall back to DefaultSlot
// when no strategy matches.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"02-01-2006",
}

var combinedLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
	"2006-01-02 3:04 pm",
	"2006-01-02 3:04pm",
}

var hourPattern = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

// Parse resolves a date string plus a time string into a timestamp.
// Strategies, in order: direct combined parse, normalized am/pm parse, and
// an hour-only extraction applied to the parsed date. The boolean reports
// whether any strategy succeeded.
func Parse(dateStr, timeStr string, now time.Time) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	if dateStr == "" && timeStr == "" {
		return time.Time{}, false
	}

	day, dayOK := ParseDate(dateStr, now)
	if !dayOK {
		day = now
	}

	combined := day.Format("2006-01-02") + " " + timeStr
	for _, layout := range combinedLayouts {
		if t, err := time.ParseInLocation(layout, combined, now.Location()); err == nil {
			return t, true
		}
	}

	normalized := normalizeTime(timeStr)
	if normalized != timeStr {
		combined = day.Format("2006-01-02") + " " + normalized
		for _, layout := range combinedLayouts {
			if t, err := time.ParseInLocation(layout, combined, now.Location()); err == nil {
				return t, true
			}
		}
	}

	if m := hourPattern.FindStringSubmatch(timeStr); m != nil {
		hour, err := strconv.Atoi(m[1])
		if err == nil && hour >= 0 && hour <= 23 {
			minute := 0
			if m[2] != "" {
				minute, _ = strconv.Atoi(m[2])
			}
			switch strings.ToLower(m[3]) {
			case "pm":
				if hour < 12 {
					hour += 12
				}
			case "am":
				if hour == 12 {
					hour = 0
				}
			}
			if hour <= 23 && minute <= 59 {
				return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), true
			}
		}
	}

	// A bare date with no usable time still counts: callers get the day at
	// opening hour.
	if dayOK && timeStr == "" {
		return time.Date(day.Year(), day.Month(), day.Day(), 10, 0, 0, 0, now.Location()), true
	}

	return time.Time{}, false
}

// ParseDate resolves a date string alone. "today" and "tomorrow" are
// understood; otherwise the known layouts are tried in order.
func ParseDate(dateStr string, now time.Time) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(dateStr))
	switch s {
	case "":
		return time.Time{}, false
	case "today":
		return now, true
	case "tomorrow":
		return now.AddDate(0, 0, 1), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, dateStr, now.Location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DefaultSlot is the hard fallback when nothing parses: tomorrow at 10:00.
func DefaultSlot(now time.Time) time.Time {
	d := now.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, now.Location())
}

// normalizeTime rewrites compact spoken forms like "4pm" into "4:00pm".
func normalizeTime(t string) string {
	t = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(t), " ", ""))
	m := regexp.MustCompile(`^(\d{1,2})(am|pm)?$`).FindStringSubmatch(t)
	if m == nil {
		return t
	}
	return m[1] + ":00" + m[2]
}

// FormatDateTime renders a timestamp the way the agent speaks it,
// e.g. "Mon, Mar 10, 4:00 PM".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "Not scheduled"
	}
	return t.Format("Mon, Jan 2, 3:04 PM")
}

// FormatHour renders an hour-of-day as clock text, e.g. 14 -> "2:00 PM".
func FormatHour(hour int) string {
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return strconv.Itoa(h12) + ":00 " + ampm
}
