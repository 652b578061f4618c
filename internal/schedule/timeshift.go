package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-day form used by TheSportsDB and our clients
	DateLayout = "2006-01-02"

	minutesPerDay = 24 * 60

	// DefaultOffsetMinutes corrects TheSportsDB kickoffs, which arrive in summer time
	DefaultOffsetMinutes = -60
)

// Shift moves an upstream (date, HH:MM) kickoff by offsetMinutes, carrying whole
// days into the date. An empty time returns the date untouched. Inputs that
// don't parse are returned as given.
func Shift(date, rawTime string, offsetMinutes int) (string, string) {
	if rawTime == "" {
		return date, ""
	}

	minutes, ok := parseClock(rawTime)
	if !ok {
		return date, rawTime
	}
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return date, rawTime
	}

	minutes += offsetMinutes
	for minutes < 0 {
		minutes += minutesPerDay
		day = day.AddDate(0, 0, -1)
	}
	for minutes >= minutesPerDay {
		minutes -= minutesPerDay
		day = day.AddDate(0, 0, 1)
	}

	return day.Format(DateLayout), fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// parseClock turns "HH:MM" (extra ":SS" ignored) into minutes since midnight
func parseClock(raw string) (int, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}
