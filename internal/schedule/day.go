package schedule

import (
	"sort"
	"time"
)

// Match is one fixture as shown to the client
type Match struct {
	ID          string   `json:"id"`
	Time        string   `json:"time"`
	Competition string   `json:"competition"`
	Home        string   `json:"home"`
	Away        string   `json:"away"`
	Channel     string   `json:"channel"`
	Priority    bool     `json:"priority"`
	Tags        []string `json:"tags"`
}

// Day groups the matches of one corrected calendar date
type Day struct {
	Date    string  `json:"date"`
	Matches []Match `json:"matches"`
}

// WindowKind tells which windowing rule produced a day list
type WindowKind string

const (
	WindowPrimary  WindowKind = "primary"
	WindowUpcoming WindowKind = "upcoming"
	WindowEarliest WindowKind = "earliest"
)

// SortDays orders days by date and each day's matches by time, untimed last
func SortDays(days []Day) {
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	for i := range days {
		SortMatches(days[i].Matches)
	}
}

// SortMatches orders by HH:MM; matches without a time keep their relative
// order after all timed ones.
func SortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Time, matches[j].Time
		switch {
		case a == "":
			return false
		case b == "":
			return true
		default:
			return a < b
		}
	})
}

// ClipWindow keeps the days in [today, today+windowDays-1]. When none fall in
// range it returns the first windowDays days from today on, and failing that
// the first windowDays days overall. days must be sorted.
func ClipWindow(days []Day, today time.Time, windowDays int) ([]Day, WindowKind) {
	start := today.Format(DateLayout)
	end := today.AddDate(0, 0, windowDays-1).Format(DateLayout)

	var inWindow, upcoming []Day
	for _, d := range days {
		if d.Date < start {
			continue
		}
		upcoming = append(upcoming, d)
		if d.Date <= end {
			inWindow = append(inWindow, d)
		}
	}

	switch {
	case len(inWindow) > 0:
		return inWindow, WindowPrimary
	case len(upcoming) > 0:
		return capDays(upcoming, windowDays), WindowUpcoming
	default:
		return capDays(days, windowDays), WindowEarliest
	}
}

func capDays(days []Day, n int) []Day {
	if len(days) > n {
		return days[:n]
	}
	if days == nil {
		return []Day{}
	}
	return days
}
