package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts TheSportsDB season lookups by league and outcome
	// (ok, empty, error, cached).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "birka",
		Subsystem: "sportsdb",
		Name:      "requests_total",
		Help:      "TheSportsDB season lookups by league and outcome.",
	}, []string{"league", "outcome"})

	// SeasonFallbacks counts lookups that retried with the previous season
	SeasonFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "birka",
		Subsystem: "sportsdb",
		Name:      "season_fallbacks_total",
		Help:      "Lookups that fell back to the previous season.",
	}, []string{"league"})

	ScheduleBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "birka",
		Subsystem: "schedule",
		Name:      "builds_total",
		Help:      "Schedules assembled.",
	})

	ScheduleBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "birka",
		Subsystem: "schedule",
		Name:      "build_seconds",
		Help:      "Time spent assembling a schedule, upstream fetches included.",
		Buckets:   prometheus.DefBuckets,
	})

	// WindowFallbacks counts schedules served outside the primary 14-day window
	WindowFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "birka",
		Subsystem: "schedule",
		Name:      "window_fallbacks_total",
		Help:      "Schedules served from a fallback window.",
	}, []string{"kind"})

	AnnotationToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "birka",
		Subsystem: "annotations",
		Name:      "toggles_total",
		Help:      "Priority and tag toggles by kind and result.",
	}, []string{"kind", "result"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "birka",
		Subsystem: "websocket",
		Name:      "clients",
		Help:      "Connected annotation stream clients.",
	})
)
