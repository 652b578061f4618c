package league

import (
	"fmt"
	"strings"
)

// SeasonType describes how a league labels its seasons
type SeasonType string

const (
	// SingleYear leagues run within one calendar year ("2024")
	SingleYear SeasonType = "single"
	// CrossYear leagues span a year boundary ("2024-2025")
	CrossYear SeasonType = "range"
)

// League is one TheSportsDB league we publish matches for
type League struct {
	ID         int        `json:"id" mapstructure:"id"`
	Name       string     `json:"name" mapstructure:"name"`
	SeasonType SeasonType `json:"seasonType" mapstructure:"season_type"`
}

// ParseSeasonType validates a configured season type
func ParseSeasonType(s string) (SeasonType, error) {
	switch SeasonType(strings.ToLower(strings.TrimSpace(s))) {
	case SingleYear:
		return SingleYear, nil
	case CrossYear:
		return CrossYear, nil
	default:
		return "", fmt.Errorf("unknown season type %q (want %q or %q)", s, SingleYear, CrossYear)
	}
}

// Defaults returns the leagues shown on the Birka screens.
func Defaults() []League {
	return []League{
		{ID: 4347, Name: "Allsvenskan", SeasonType: SingleYear},
		{ID: 4328, Name: "Premier League", SeasonType: CrossYear},
		{ID: 4480, Name: "Champions League", SeasonType: CrossYear},
		{ID: 4570, Name: "EFL Cup", SeasonType: CrossYear},
		{ID: 4429, Name: "Fotbolls-VM", SeasonType: CrossYear},
		{ID: 4419, Name: "SHL", SeasonType: CrossYear},
		{ID: 5162, Name: "Hockeyallsvenskan", SeasonType: CrossYear},
		{ID: 4370, Name: "F1", SeasonType: SingleYear},
		{ID: 4373, Name: "IndyCar", SeasonType: SingleYear},
		{ID: 4554, Name: "Dart", SeasonType: SingleYear},
	}
}

// Validate checks a configured league list
func Validate(leagues []League) error {
	if len(leagues) == 0 {
		return fmt.Errorf("no leagues configured")
	}
	seen := make(map[int]bool, len(leagues))
	for _, l := range leagues {
		if l.ID <= 0 {
			return fmt.Errorf("league %q: invalid id %d", l.Name, l.ID)
		}
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("league %d: missing name", l.ID)
		}
		if _, err := ParseSeasonType(string(l.SeasonType)); err != nil {
			return fmt.Errorf("league %q: %w", l.Name, err)
		}
		if seen[l.ID] {
			return fmt.Errorf("league %d listed twice", l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}
