package league

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var rangeSeasonPattern = regexp.MustCompile(`(\d{4})-(\d{4})`)

// CurrentSeason returns the season label TheSportsDB expects for the league at now.
// Cross-year seasons switch over in July.
func CurrentSeason(l League, now time.Time) string {
	year := now.Year()
	if l.SeasonType != CrossYear {
		return strconv.Itoa(year)
	}

	start := year
	if now.Month() < time.July {
		start = year - 1
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

// PreviousSeason returns the season before the given one.
// Labels that don't parse are returned unchanged.
func PreviousSeason(l League, season string) string {
	if l.SeasonType != CrossYear {
		year, err := strconv.Atoi(season)
		if err != nil {
			return season
		}
		return strconv.Itoa(year - 1)
	}

	m := rangeSeasonPattern.FindStringSubmatch(season)
	if m == nil {
		return season
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%d-%d", start-1, end-1)
}
