package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/birka/schema/internal/ingest/sportsdb"
	"github.com/birka/schema/internal/league"
	"github.com/birka/schema/internal/schedule"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the service needs at startup
type Config struct {
	SportsDBKey     string        `mapstructure:"thesportsdb_key"`
	SportsDBBaseURL string        `mapstructure:"thesportsdb_base_url"`
	Port            string        `mapstructure:"port"`
	PrioritiesFile  string        `mapstructure:"priorities_file"`
	RedisURL        string        `mapstructure:"redis_url"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	WarmInterval    time.Duration `mapstructure:"warm_interval"`
	OffsetMinutes   int           `mapstructure:"time_offset_minutes"`
	MatchDuration   int           `mapstructure:"match_duration_minutes"`
	WindowDays      int           `mapstructure:"window_days"`
	Timezone        string        `mapstructure:"timezone"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFile         string        `mapstructure:"log_file"`
	StaticDir       string        `mapstructure:"static_dir"`

	Leagues  []league.League              `mapstructure:"leagues"`
	Channels []schedule.ChannelRuleConfig `mapstructure:"channels"`

	location *time.Location
}

// envKeys are read verbatim from the environment
var envKeys = []string{
	"thesportsdb_key",
	"thesportsdb_base_url",
	"port",
	"priorities_file",
	"redis_url",
	"cache_ttl",
	"warm_interval",
	"time_offset_minutes",
	"match_duration_minutes",
	"window_days",
	"timezone",
	"upstream_timeout",
	"log_level",
	"log_file",
	"static_dir",
}

// New returns a viper instance carrying the defaults and env bindings
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("thesportsdb_key", sportsdb.DemoAPIKey)
	v.SetDefault("thesportsdb_base_url", sportsdb.BaseURL)
	v.SetDefault("port", "3000")
	v.SetDefault("priorities_file", "priorities.json")
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", 10*time.Minute)
	v.SetDefault("warm_interval", time.Duration(0))
	v.SetDefault("time_offset_minutes", schedule.DefaultOffsetMinutes)
	v.SetDefault("match_duration_minutes", 120)
	v.SetDefault("window_days", 14)
	v.SetDefault("timezone", "Local")
	v.SetDefault("upstream_timeout", sportsdb.DefaultTimeout)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("static_dir", "")

	for _, key := range envKeys {
		// BindEnv with one argument upper-cases the key, which gives the exact names
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads .env, the optional config file and the environment. An empty
// path looks for config.yaml in the working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates a prepared viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if len(cfg.Leagues) == 0 {
		cfg.Leagues = league.Defaults()
	}
	for i := range cfg.Leagues {
		st, err := league.ParseSeasonType(string(cfg.Leagues[i].SeasonType))
		if err != nil {
			return nil, fmt.Errorf("league %q: %w", cfg.Leagues[i].Name, err)
		}
		cfg.Leagues[i].SeasonType = st
	}
	if len(cfg.Channels) == 0 {
		cfg.Channels = schedule.DefaultChannelRules()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges, the timezone and the league table
func (c *Config) Validate() error {
	if c.WindowDays <= 0 {
		return fmt.Errorf("window_days must be positive, got %d", c.WindowDays)
	}
	if c.MatchDuration <= 0 {
		return fmt.Errorf("match_duration_minutes must be positive, got %d", c.MatchDuration)
	}
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.CacheTTL < 0 || c.WarmInterval < 0 || c.UpstreamTimeout < 0 {
		return errors.New("durations must not be negative")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	if err := league.Validate(c.Leagues); err != nil {
		return err
	}
	if _, err := schedule.NewChannelResolver(c.Channels); err != nil {
		return err
	}
	return nil
}

// Location is the zone "today" and kickoff instants are computed in
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// MatchDurationValue returns the match duration as a time.Duration
func (c *Config) MatchDurationValue() time.Duration {
	return time.Duration(c.MatchDuration) * time.Minute
}
