package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/birka/schema/internal/ingest/sportsdb"
	"github.com/birka/schema/internal/league"
	"github.com/birka/schema/internal/metrics"
	"github.com/birka/schema/internal/schedule"
	"github.com/birka/schema/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMatchDuration = 120 * time.Minute
	DefaultWindowDays    = 14

	// GeneratedAtLayout matches the millisecond ISO-8601 stamps browsers produce
	GeneratedAtLayout = "2006-01-02T15:04:05.000Z07:00"
)

// EventSource returns a league's raw events; failures surface as an empty list
type EventSource interface {
	FetchLeagueEvents(ctx context.Context, l league.League) []sportsdb.RawEvent
}

// AnnotationSource exposes the current annotations
type AnnotationSource interface {
	Snapshot() store.Annotations
}

// Schedule is the /schedule response body
type Schedule struct {
	GeneratedAt string         `json:"generatedAt"`
	Days        []schedule.Day `json:"days"`
}

// ScheduleConfig tunes schedule assembly
type ScheduleConfig struct {
	Leagues       []league.League
	Channels      *schedule.ChannelResolver
	OffsetMinutes int
	MatchDuration time.Duration
	WindowDays    int
	Location      *time.Location
	Now           func() time.Time
}

// ScheduleService assembles the windowed, annotated day list
type ScheduleService struct {
	events      EventSource
	annotations AnnotationSource
	cfg         ScheduleConfig
	logger      logrus.FieldLogger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(events EventSource, annotations AnnotationSource, cfg ScheduleConfig, logger logrus.FieldLogger) *ScheduleService {
	if cfg.Channels == nil {
		cfg.Channels = schedule.MustDefaultChannelResolver()
	}
	if cfg.MatchDuration <= 0 {
		cfg.MatchDuration = DefaultMatchDuration
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultWindowDays
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ScheduleService{
		events:      events,
		annotations: annotations,
		cfg:         cfg,
		logger:      logger.WithField("component", "schedule"),
	}
}

// Build fetches every league and returns the schedule for the coming window
func (s *ScheduleService) Build(ctx context.Context) (*Schedule, error) {
	started := time.Now()
	defer func() {
		metrics.ScheduleBuilds.Inc()
		metrics.ScheduleBuildSeconds.Observe(time.Since(started).Seconds())
	}()

	results := s.fetchAll(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("building schedule: %w", err)
	}

	now := s.cfg.Now().In(s.cfg.Location)
	notes := s.annotations.Snapshot()

	byDate := make(map[string]*schedule.Day)
	total := 0
	for i, events := range results {
		l := s.cfg.Leagues[i]
		for _, ev := range events {
			m, date, ok := s.normalize(l, ev, now, notes)
			if !ok {
				continue
			}
			day, exists := byDate[date]
			if !exists {
				day = &schedule.Day{Date: date, Matches: []schedule.Match{}}
				byDate[date] = day
			}
			day.Matches = append(day.Matches, m)
			total++
		}
	}

	all := make([]schedule.Day, 0, len(byDate))
	for _, d := range byDate {
		all = append(all, *d)
	}
	schedule.SortDays(all)

	days, kind := schedule.ClipWindow(all, now, s.cfg.WindowDays)
	if kind != schedule.WindowPrimary && len(days) > 0 {
		metrics.WindowFallbacks.WithLabelValues(string(kind)).Inc()
	}

	s.logger.WithFields(logrus.Fields{
		"matches": total,
		"days":    len(days),
		"window":  kind,
	}).Debug("Schedule built")

	return &Schedule{
		GeneratedAt: s.cfg.Now().UTC().Format(GeneratedAtLayout),
		Days:        days,
	}, nil
}

// fetchAll queries every league concurrently; results are indexed like Leagues
func (s *ScheduleService) fetchAll(ctx context.Context) [][]sportsdb.RawEvent {
	results := make([][]sportsdb.RawEvent, len(s.cfg.Leagues))

	var wg sync.WaitGroup
	for i, l := range s.cfg.Leagues {
		wg.Add(1)
		go func(i int, l league.League) {
			defer wg.Done()
			results[i] = s.events.FetchLeagueEvents(ctx, l)
		}(i, l)
	}
	wg.Wait()

	return results
}

// normalize turns a raw event into a match on its corrected date. It reports
// false for events without a date and for matches that have already finished.
func (s *ScheduleService) normalize(l league.League, ev sportsdb.RawEvent, now time.Time, notes store.Annotations) (schedule.Match, string, bool) {
	if ev.DateEvent == "" {
		return schedule.Match{}, "", false
	}

	date, clock := schedule.Shift(ev.DateEvent, ev.LocalTime(), s.cfg.OffsetMinutes)

	start, ok := s.startOf(date, clock)
	if !ok {
		s.logger.WithFields(logrus.Fields{
			"league": l.Name,
			"id":     ev.ID,
			"date":   ev.DateEvent,
		}).Debug("Unparseable event date, skipping")
		return schedule.Match{}, "", false
	}
	if start.Add(s.cfg.MatchDuration).Before(now) {
		return schedule.Match{}, "", false
	}

	return schedule.Match{
		ID:          ev.ID,
		Time:        clock,
		Competition: l.Name,
		Home:        ev.HomeTeam,
		Away:        ev.AwayTeam,
		Channel:     s.cfg.Channels.Resolve(l.Name, ev.HomeTeam+ev.AwayTeam),
		Priority:    notes.IsPriority(ev.ID),
		Tags:        notes.TagsFor(ev.ID),
	}, date, true
}

// startOf returns the kickoff instant; untimed matches start at noon
func (s *ScheduleService) startOf(date, clock string) (time.Time, bool) {
	day, err := time.ParseInLocation(schedule.DateLayout, date, s.cfg.Location)
	if err != nil {
		return time.Time{}, false
	}

	hour, minute := 12, 0
	if clock != "" {
		t, err := time.Parse("15:04", clock)
		if err == nil {
			hour, minute = t.Hour(), t.Minute()
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, s.cfg.Location), true
}
