package sportsdb

import "github.com/tidwall/gjson"

// RawEvent is the subset of a TheSportsDB event we read
type RawEvent struct {
	ID             string
	DateEvent      string
	DateEventLocal string
	StrTime        string
	StrTimeLocal   string
	HomeTeam       string
	AwayTeam       string
}

// TimeField is one upstream kickoff field
type TimeField struct {
	Name string
	Get  func(RawEvent) string
}

// TimeFields lists the kickoff fields in order of preference.
var TimeFields = []TimeField{
	{Name: "strTime", Get: func(e RawEvent) string { return e.StrTime }},
	{Name: "strTimeLocal", Get: func(e RawEvent) string { return e.StrTimeLocal }},
}

// LocalTime returns the first populated kickoff field cut to HH:MM, or "".
func (e RawEvent) LocalTime() string {
	for _, f := range TimeFields {
		if v := f.Get(e); v != "" {
			if len(v) > 5 {
				return v[:5]
			}
			return v
		}
	}
	return ""
}

// parseEvents reads the "events" array of an eventsseason.php response.
// TheSportsDB answers null when a season has no events.
func parseEvents(body []byte) []RawEvent {
	list := gjson.GetBytes(body, "events")
	if !list.IsArray() {
		return []RawEvent{}
	}

	items := list.Array()
	events := make([]RawEvent, 0, len(items))
	for _, ev := range items {
		events = append(events, RawEvent{
			ID:             ev.Get("idEvent").String(),
			DateEvent:      ev.Get("dateEvent").String(),
			DateEventLocal: ev.Get("dateEventLocal").String(),
			StrTime:        ev.Get("strTime").String(),
			StrTimeLocal:   ev.Get("strTimeLocal").String(),
			HomeTeam:       ev.Get("strHomeTeam").String(),
			AwayTeam:       ev.Get("strAwayTeam").String(),
		})
	}
	return events
}
