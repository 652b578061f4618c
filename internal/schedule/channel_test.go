package schedule

import "testing"

func TestResolveDefaults(t *testing.T) {
	r := MustDefaultChannelResolver()

	tests := []struct {
		competition string
		text        string
		want        string
	}{
		{"Hockeyallsvenskan", "AIK Modo", "TV4"},
		{"Allsvenskan", "Malmo FF Hammarby", "Discovery+"},
		{"Fotbolls-VM", "Sweden Brazil", "Viaplay"},
		{"SHL", "Frolunda Lulea", "TV4"},
		{"F1", "", "Viaplay / Viasat"},
		{"Premier League", "Arsenal Chelsea", "Viaplay / Viasat"},
		{"Champions League", "", "Viaplay / V Sport Fotboll"},
		{"EFL Cup", "Leeds Fulham", "Viaplay"},
		{"Dart", "", "Viaplay / Viasat"},
		{"Bandy", "Edsbyn Sandviken", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.competition, func(t *testing.T) {
			if got := r.Resolve(tt.competition, tt.text); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.competition, tt.text, got, tt.want)
			}
		})
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	r, err := NewChannelResolver([]ChannelRuleConfig{
		{Pattern: "cup", Channel: "first"},
		{Pattern: "league cup", Channel: "second"},
	})
	if err != nil {
		t.Fatalf("NewChannelResolver: %v", err)
	}
	if got := r.Resolve("League Cup", ""); got != "first" {
		t.Errorf("Resolve = %q, want %q", got, "first")
	}

	// Auxiliary text takes part in matching too.
	if got := r.Resolve("Friendly", "Cup holders"); got != "first" {
		t.Errorf("Resolve with text = %q, want %q", got, "first")
	}
}

func TestResolveDefaultOrder(t *testing.T) {
	// "Hockeyallsvenskan" also matches the allsvenskan rule further down.
	rules := MustDefaultChannelResolver().Rules()
	hockey, football := -1, -1
	for i, rule := range rules {
		switch rule.Pattern.String() {
		case "(?i)hockeyallsvenskan":
			hockey = i
		case "(?i)allsvenskan":
			football = i
		}
	}
	if hockey < 0 || football < 0 || hockey > football {
		t.Fatalf("hockeyallsvenskan rule at %d must precede allsvenskan at %d", hockey, football)
	}
}

func TestNewChannelResolverErrors(t *testing.T) {
	if _, err := NewChannelResolver([]ChannelRuleConfig{{Pattern: "(", Channel: "x"}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
	if _, err := NewChannelResolver([]ChannelRuleConfig{{Pattern: "", Channel: "x"}}); err == nil {
		t.Error("expected error for empty pattern")
	}
}
