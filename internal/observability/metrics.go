package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	AvailabilityQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_availability_queries_total",
			Help: "Total availability queries",
		},
	)

	ActiveHolds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_active_holds",
			Help: "Holds currently in held status",
		},
	)

	HoldOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_hold_outcomes_total",
			Help: "Terminal hold transitions by outcome",
		},
		[]string{"outcome"},
	)

	BookingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_booking_outcomes_total",
			Help: "Finalized booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	SlotConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_slot_conflicts_total",
			Help: "Bookings aborted because the window went busy",
		},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_provider_call_seconds",
			Help:    "Duration of calendar provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_rate_limit_exceeded_total",
			Help: "Total rate limit rejections",
		},
	)
)
