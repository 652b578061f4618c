package schedule

import (
	"fmt"
	"regexp"
	"strings"
)

// ChannelRule maps a competition pattern to a broadcaster label
type ChannelRule struct {
	Pattern *regexp.Regexp
	Channel string
}

// ChannelRuleConfig is the configured form of a ChannelRule
type ChannelRuleConfig struct {
	Pattern string `mapstructure:"pattern"`
	Channel string `mapstructure:"channel"`
}

// ChannelResolver picks the broadcaster for a match. Rules overlap, so the
// first match wins and the order is significant.
type ChannelResolver struct {
	rules []ChannelRule
}

// DefaultChannelRules are the Swedish broadcast rights we know about.
// Hockeyallsvenskan has to come before Allsvenskan.
func DefaultChannelRules() []ChannelRuleConfig {
	return []ChannelRuleConfig{
		{Pattern: `hockeyallsvenskan`, Channel: "TV4"},
		{Pattern: `allsvenskan`, Channel: "Discovery+"},
		{Pattern: `premier league`, Channel: "Viaplay / Viasat"},
		{Pattern: `champions league`, Channel: "Viaplay / V Sport Fotboll"},
		{Pattern: `\bshl\b`, Channel: "TV4"},
		{Pattern: `\bf1\b|\bformula 1\b`, Channel: "Viaplay / Viasat"},
		{Pattern: `indycar`, Channel: "Viaplay / Viasat"},
		{Pattern: `dart`, Channel: "Viaplay / Viasat"},
		{Pattern: `fotbolls[- ]?vm|fifa world cup|vm`, Channel: "Viaplay"},
		{Pattern: `efl cup|league cup`, Channel: "Viaplay"},
	}
}

// NewChannelResolver compiles rules case-insensitively, keeping their order
func NewChannelResolver(configs []ChannelRuleConfig) (*ChannelResolver, error) {
	rules := make([]ChannelRule, 0, len(configs))
	for i, c := range configs {
		if c.Pattern == "" {
			return nil, fmt.Errorf("channel rule %d: empty pattern", i)
		}
		re, err := regexp.Compile("(?i)" + c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("channel rule %d (%s): %w", i, c.Channel, err)
		}
		rules = append(rules, ChannelRule{Pattern: re, Channel: c.Channel})
	}
	return &ChannelResolver{rules: rules}, nil
}

// MustDefaultChannelResolver returns a resolver over DefaultChannelRules
func MustDefaultChannelResolver() *ChannelResolver {
	r, err := NewChannelResolver(DefaultChannelRules())
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the channel of the first rule matching competition and text,
// or "" when nothing matches.
func (r *ChannelResolver) Resolve(competition, text string) string {
	combined := strings.ToLower(competition + " " + text)
	for _, rule := range r.rules {
		if rule.Pattern.MatchString(combined) {
			return rule.Channel
		}
	}
	return ""
}

// Rules returns the compiled rules in evaluation order
func (r *ChannelResolver) Rules() []ChannelRule {
	out := make([]ChannelRule, len(r.rules))
	copy(out, r.rules)
	return out
}
