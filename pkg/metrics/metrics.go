package metrics

import (
	"errors"

	"github.com/pixperk/handset/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// booking latency inside the service, validation through registry
	// transport time is not included
	BookDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "handset_book_duration_seconds",
			Help:    "time taken to book a mobile",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10us to 160ms
		},
	)

	// book attempts by outcome
	// labels: result (ok, in_use, invalid_due, unknown_mobile, invalid_request, error)
	BookTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handset_book_total",
			Help: "total number of book attempts",
		},
		[]string{"result"},
	)

	// return attempts by outcome
	// labels: result (ok, not_found, forbidden, invalid_request, error)
	ReturnTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handset_return_total",
			Help: "total number of return attempts",
		},
		[]string{"result"},
	)

	// mobiles currently booked
	LeasesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "handset_leases_active",
			Help: "current number of booked mobiles",
		},
	)

	// overdue mobiles seen by the last listing
	LeasesOverdue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "handset_leases_overdue",
			Help: "number of overdue mobiles at the last listing",
		},
	)

	// notification deliveries per sink
	// labels: sink, result (ok, error)
	NotifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handset_notify_total",
			Help: "total number of event deliveries per sink",
		},
		[]string{"sink", "result"},
	)

	// events dropped because the dispatcher queue was full or closed
	NotifyDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handset_notify_dropped_total",
			Help: "total number of events dropped before delivery",
		},
	)

	// requests rejected by the rate limiter
	// labels: transport (http, grpc)
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handset_rate_limited_total",
			Help: "total number of requests rejected by the rate limiter",
		},
		[]string{"transport"},
	)

	// always 1 while the process runs
	Up = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "handset_up",
			Help: "whether the service is up (always 1 when running)",
		},
	)
)

func init() {
	Up.Set(1)
}

// maps a booking outcome to its result label
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrAlreadyLeased):
		return "in_use"
	case errors.Is(err, types.ErrInvalidDue):
		return "invalid_due"
	case errors.Is(err, types.ErrUnknownMobile):
		return "unknown_mobile"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, types.ErrForbiddenHolder):
		return "forbidden"
	case errors.Is(err, types.ErrInvalidRequest):
		return "invalid_request"
	default:
		return "error"
	}
}
