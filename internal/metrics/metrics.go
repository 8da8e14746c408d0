package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcome metrics
var (
	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeaccess_requests_total",
			Help: "Access request invocations by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	AllowanceTopUps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodeaccess_allowance_topups_total",
		Help: "Fee token allowance increases submitted",
	})

	PoolSigns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodeaccess_pool_signs_total",
		Help: "Pool sign transactions submitted",
	})

	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nodeaccess_request_duration_seconds",
		Help:    "Time from invocation to access request confirmation",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})
)

// HTTP metrics
var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "nodeaccess_http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "path", "status"},
	)
)
