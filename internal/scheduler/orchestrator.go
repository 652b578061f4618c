package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/birka/schema/internal/league"
	"github.com/sirupsen/logrus"
)

// Refresher reloads one league's season events into the cache
type Refresher interface {
	Refresh(ctx context.Context, l league.League) (int, error)
}

// Config holds scheduler configuration
type Config struct {
	WarmInterval time.Duration // 0 disables warming
	Leagues      []league.League
}

// Orchestrator keeps the upstream response cache warm so schedule requests
// rarely wait on TheSportsDB.
type Orchestrator struct {
	refresher Refresher
	config    Config
	logger    logrus.FieldLogger

	mu       sync.Mutex
	cancel   context.CancelFunc
	lastRun  time.Time
	lastErrs int
	done     chan struct{}
}

// NewOrchestrator creates a new cache warming scheduler
func NewOrchestrator(refresher Refresher, config Config, logger logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		refresher: refresher,
		config:    config,
		logger:    logger.WithField("component", "scheduler"),
		done:      make(chan struct{}),
	}
}

// Enabled reports whether a warm interval is configured
func (o *Orchestrator) Enabled() bool {
	return o.config.WarmInterval > 0
}

// Start warms the cache immediately and then on every tick. It blocks until
// ctx is cancelled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	defer close(o.done)
	if !o.Enabled() {
		o.logger.Info("Cache warming disabled")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()
	defer cancel()

	o.logger.WithFields(logrus.Fields{
		"interval": o.config.WarmInterval,
		"leagues":  len(o.config.Leagues),
	}).Info("→ Cache warming started")

	ticker := time.NewTicker(o.config.WarmInterval)
	defer ticker.Stop()

	o.WarmAll(ctx)
	for {
		select {
		case <-ctx.Done():
			o.logger.Info("→ Cache warming stopped")
			return
		case <-ticker.C:
			o.WarmAll(ctx)
		}
	}
}

// WarmAll refreshes every league once and returns the number of failures
func (o *Orchestrator) WarmAll(ctx context.Context) int {
	startTime := time.Now()
	failures, events := 0, 0

	for _, l := range o.config.Leagues {
		if ctx.Err() != nil {
			break
		}
		n, err := o.refresher.Refresh(ctx, l)
		if err != nil {
			failures++
			o.logger.WithError(err).WithField("league", l.Name).Warn("Cache warm failed")
			continue
		}
		events += n
	}

	o.mu.Lock()
	o.lastRun = startTime
	o.lastErrs = failures
	o.mu.Unlock()

	o.logger.WithFields(logrus.Fields{
		"events":   events,
		"failures": failures,
		"duration": time.Since(startTime).Round(time.Millisecond),
	}).Debug("Cache warmed")
	return failures
}

// Stop cancels a running Start and waits for it to return
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-o.done
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := map[string]interface{}{
		"warming_enabled": o.Enabled(),
		"warm_interval":   o.config.WarmInterval.String(),
		"leagues":         len(o.config.Leagues),
		"last_failures":   o.lastErrs,
	}
	if !o.lastRun.IsZero() {
		status["last_run"] = o.lastRun.UTC().Format(time.RFC3339)
	}
	return status
}
