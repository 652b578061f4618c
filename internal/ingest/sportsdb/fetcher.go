package sportsdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/birka/schema/internal/cache"
	"github.com/birka/schema/internal/league"
	"github.com/birka/schema/internal/metrics"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned by an EventCache that has no entry for a key
var ErrCacheMiss = cache.ErrMiss

// EventCache stores raw season responses between requests
type EventCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SeasonSource returns the raw eventsseason.php body for a league season
type SeasonSource interface {
	FetchSeasonBody(ctx context.Context, leagueID int, season string) ([]byte, error)
}

// Fetcher resolves a league's events for the current season, falling back to
// the previous season once when the current one is empty.
type Fetcher struct {
	source   SeasonSource
	cache    EventCache
	cacheTTL time.Duration
	now      func() time.Time
	logger   logrus.FieldLogger
}

// NewFetcher creates a fetcher. eventCache may be nil.
func NewFetcher(source SeasonSource, eventCache EventCache, cacheTTL time.Duration, now func() time.Time, logger logrus.FieldLogger) *Fetcher {
	if now == nil {
		now = time.Now
	}
	return &Fetcher{
		source:   source,
		cache:    eventCache,
		cacheTTL: cacheTTL,
		now:      now,
		logger:   logger.WithField("component", "fetcher"),
	}
}

// FetchLeagueEvents never fails: upstream and parse errors are logged and the
// league contributes no events.
func (f *Fetcher) FetchLeagueEvents(ctx context.Context, l league.League) []RawEvent {
	events, err := f.fetchWithFallback(ctx, l, true)
	if err != nil {
		f.logger.WithError(err).WithField("league", l.Name).Warn("Fetch error, skipping league")
		return []RawEvent{}
	}
	return events
}

// Refresh re-fetches a league ignoring cached responses and stores the result
func (f *Fetcher) Refresh(ctx context.Context, l league.League) (int, error) {
	events, err := f.fetchWithFallback(ctx, l, false)
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

func (f *Fetcher) fetchWithFallback(ctx context.Context, l league.League, useCache bool) ([]RawEvent, error) {
	season := league.CurrentSeason(l, f.now())
	events, err := f.season(ctx, l, season, useCache)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		return events, nil
	}

	prev := league.PreviousSeason(l, season)
	metrics.SeasonFallbacks.WithLabelValues(l.Name).Inc()
	f.logger.WithFields(logrus.Fields{
		"league": l.Name,
		"season": season,
		"prev":   prev,
	}).Debug("Season empty, trying previous season")

	return f.season(ctx, l, prev, useCache)
}

func (f *Fetcher) season(ctx context.Context, l league.League, season string, useCache bool) ([]RawEvent, error) {
	key := cacheKey(l.ID, season)

	if useCache && f.cache != nil {
		body, err := f.cache.Get(ctx, key)
		switch {
		case err == nil:
			metrics.UpstreamRequests.WithLabelValues(l.Name, "cached").Inc()
			return parseEvents(body), nil
		case !errors.Is(err, ErrCacheMiss):
			f.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		}
	}

	body, err := f.source.FetchSeasonBody(ctx, l.ID, season)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(l.Name, "error").Inc()
		return nil, fmt.Errorf("league %d season %s: %w", l.ID, season, err)
	}

	events := parseEvents(body)
	outcome := "ok"
	if len(events) == 0 {
		outcome = "empty"
	}
	metrics.UpstreamRequests.WithLabelValues(l.Name, outcome).Inc()

	if f.cache != nil {
		if err := f.cache.Set(ctx, key, body, f.cacheTTL); err != nil {
			f.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
		}
	}

	return events, nil
}

func cacheKey(leagueID int, season string) string {
	return fmt.Sprintf("sportsdb:events:%d:%s", leagueID, season)
}
