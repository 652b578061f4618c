package main

import (
	"time"

	"github.com/birka/schema/internal/cache"
	"github.com/birka/schema/internal/config"
	"github.com/birka/schema/internal/ingest/sportsdb"
	"github.com/birka/schema/internal/schedule"
	"github.com/birka/schema/internal/service"
	"github.com/birka/schema/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	redisAttempts   = 3
	redisRetryDelay = 2 * time.Second
	cachePrefix     = "birka:"
)

// app holds the components shared by serve and schedule
type app struct {
	cache       *cache.RedisCache
	fetcher     *sportsdb.Fetcher
	annotations *store.FileAnnotationStore
	schedule    *service.ScheduleService
}

func newApp(cfg *config.Config, logger *logrus.Logger) (*app, error) {
	channels, err := schedule.NewChannelResolver(cfg.Channels)
	if err != nil {
		return nil, err
	}

	a := &app{}
	if cfg.RedisURL != "" {
		a.cache = connectRedis(cfg.RedisURL, logger)
	}

	client := sportsdb.New(cfg.SportsDBBaseURL, cfg.SportsDBKey, cfg.UpstreamTimeout, logger)
	var eventCache sportsdb.EventCache
	if a.cache != nil {
		eventCache = a.cache
	}
	a.fetcher = sportsdb.NewFetcher(client, eventCache, cfg.CacheTTL, nil, logger)

	a.annotations = store.NewFileAnnotationStore(cfg.PrioritiesFile, logger)
	if err := a.annotations.Load(); err != nil {
		return nil, err
	}

	a.schedule = service.NewScheduleService(a.fetcher, a.annotations, service.ScheduleConfig{
		Leagues:       cfg.Leagues,
		Channels:      channels,
		OffsetMinutes: cfg.OffsetMinutes,
		MatchDuration: cfg.MatchDurationValue(),
		WindowDays:    cfg.WindowDays,
		Location:      cfg.Location(),
	}, logger)

	return a, nil
}

// connectRedis retries a few times and runs without a cache when Redis stays down
func connectRedis(redisURL string, logger *logrus.Logger) *cache.RedisCache {
	logger.Info("Connecting to Redis...")
	for i := 0; i < redisAttempts; i++ {
		rc, err := cache.NewRedisCache(redisURL, cachePrefix)
		if err == nil {
			logger.Info("✓ Connected to Redis")
			return rc
		}

		if i < redisAttempts-1 {
			logger.Warnf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, redisAttempts, err, redisRetryDelay)
			time.Sleep(redisRetryDelay)
		} else {
			logger.Warnf("⚠️  Redis unavailable after %d attempts: %v (continuing without cache)", redisAttempts, err)
		}
	}
	return nil
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}
