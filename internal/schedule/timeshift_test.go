package schedule

import (
	"fmt"
	"testing"
	"time"
)

func TestShift(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		time     string
		offset   int
		wantDate string
		wantTime string
	}{
		{"no time", "2024-03-10", "", -60, "2024-03-10", ""},
		{"same day", "2024-03-10", "19:00", -60, "2024-03-10", "18:00"},
		{"rolls back a day", "2024-03-10", "00:30", -60, "2024-03-09", "23:30"},
		{"rolls back over month", "2024-03-01", "00:00", -60, "2024-02-29", "23:00"},
		{"rolls back over year", "2025-01-01", "00:15", -60, "2024-12-31", "23:15"},
		{"rolls forward", "2024-12-31", "23:30", 60, "2025-01-01", "00:30"},
		{"keeps padding", "2024-03-10", "10:05", -60, "2024-03-10", "09:05"},
		{"zero offset", "2024-03-10", "07:45", 0, "2024-03-10", "07:45"},
		{"missing minutes", "2024-03-10", "19", -60, "2024-03-10", "19"},
		{"empty minutes", "2024-03-10", "19:", -60, "2024-03-10", "19:"},
		{"garbage", "2024-03-10", "TBD:xx", -60, "2024-03-10", "TBD:xx"},
		{"bad date", "soon", "19:00", -60, "soon", "19:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDate, gotTime := Shift(tt.date, tt.time, tt.offset)
			if gotDate != tt.wantDate || gotTime != tt.wantTime {
				t.Errorf("Shift(%q, %q, %d) = (%q, %q), want (%q, %q)",
					tt.date, tt.time, tt.offset, gotDate, gotTime, tt.wantDate, tt.wantTime)
			}
		})
	}
}

// Every minute of the day shifted by the default offset must stay within a
// valid clock, move the date by at most one day, and round trip.
func TestShiftProperties(t *testing.T) {
	const date = "2024-06-15"
	base, _ := time.Parse(DateLayout, date)

	for m := 0; m < minutesPerDay; m++ {
		in := fmt.Sprintf("%02d:%02d", m/60, m%60)
		gotDate, gotTime := Shift(date, in, DefaultOffsetMinutes)

		if len(gotTime) != 5 || gotTime < "00:00" || gotTime > "23:59" {
			t.Fatalf("Shift(%q) time %q out of range", in, gotTime)
		}

		d, err := time.Parse(DateLayout, gotDate)
		if err != nil {
			t.Fatalf("Shift(%q) date %q does not parse: %v", in, gotDate, err)
		}
		if diff := d.Sub(base); diff < -24*time.Hour || diff > 24*time.Hour {
			t.Fatalf("Shift(%q) moved date by %v", in, diff)
		}

		_, back := Shift(gotDate, gotTime, -DefaultOffsetMinutes)
		if back != in {
			t.Fatalf("round trip of %q gave %q", in, back)
		}

		againDate, againTime := Shift(date, in, DefaultOffsetMinutes)
		if againDate != gotDate || againTime != gotTime {
			t.Fatalf("Shift(%q) not deterministic", in)
		}
	}
}
