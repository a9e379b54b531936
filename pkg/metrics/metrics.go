package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Deliveries counts per-token send outcomes by outcome label.
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pushcast_deliveries_total",
		Help: "Push messages sent per token, by outcome.",
	}, []string{"outcome"})

	DeadTokensReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pushcast_dead_tokens_reaped_total",
		Help: "Tokens deleted after the gateway reported them unregistered.",
	})

	CampaignsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pushcast_campaigns_finished_total",
		Help: "Campaign dispatch passes, by terminal status.",
	}, []string{"status"})

	SchedulerRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pushcast_scheduler_runs_total",
		Help: "Scheduler passes over due campaigns.",
	})

	Clicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pushcast_clicks_total",
		Help: "Track-click requests, by result.",
	}, []string{"result"})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pushcast_dispatch_duration_seconds",
		Help:    "Wall time of one dispatch pass over a campaign's targets.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)
