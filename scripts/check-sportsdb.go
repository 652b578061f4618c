package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/birka/schema/internal/ingest/sportsdb"
	"github.com/birka/schema/internal/league"
	"github.com/birka/schema/internal/schedule"
	"github.com/sirupsen/logrus"
)

// Manual check of TheSportsDB season lookups for the configured leagues
func main() {
	key := flag.String("key", sportsdb.DemoAPIKey, "TheSportsDB API key")
	only := flag.Int("league", 0, "only check this league id")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	logger.Info("Checking TheSportsDB season lookups")
	logger.Info("===================================")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client := sportsdb.New("", *key, 0, logger)
	fetcher := sportsdb.NewFetcher(client, nil, 0, nil, logger)
	channels := schedule.MustDefaultChannelResolver()

	failed := 0
	for _, l := range league.Defaults() {
		if *only != 0 && l.ID != *only {
			continue
		}

		season := league.CurrentSeason(l, time.Now())
		n, err := fetcher.Refresh(ctx, l)
		if err != nil {
			failed++
			logger.WithField("league", l.Name).Errorf("❌ %v", err)
			continue
		}
		logger.WithFields(logrus.Fields{
			"league":  l.Name,
			"season":  season,
			"channel": channels.Resolve(l.Name, ""),
		}).Infof("✓ %d events", n)
	}

	logger.Info("===================================")
	if failed > 0 {
		logger.Errorf("%d league(s) failed", failed)
		os.Exit(1)
	}
	logger.Info("✓ All leagues reachable")
}
