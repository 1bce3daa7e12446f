// Package metrics defines the Prometheus collectors for the publish core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Google API metrics
var (
	// GoogleAPIRequestsTotal tracks Google Business Profile API requests by method and status
	GoogleAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "google_api_requests_total",
			Help: "Total Google Business Profile API requests by method and HTTP status",
		},
		[]string{"method", "status"},
	)

	// GoogleAPITimeoutsTotal tracks internally triggered request timeouts
	GoogleAPITimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "google_api_timeouts_total",
			Help: "Total Google API requests aborted by the internal timeout",
		},
	)

	// TokenRefreshFailuresTotal tracks failed access-token refreshes by reason
	TokenRefreshFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_refresh_failures_total",
			Help: "Total failed access-token refreshes by reason (expired/upstream)",
		},
		[]string{"reason"},
	)
)

// Publish workflow metrics
var (
	// PublishAttemptsTotal tracks publish workflow outcomes
	PublishAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_attempts_total",
			Help: "Total reply publish attempts by outcome",
		},
		[]string{"outcome"},
	)

	// ReviewsSyncedTotal tracks reviews upserted during sync
	ReviewsSyncedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_synced_total",
			Help: "Total reviews upserted from the provider",
		},
	)
)
