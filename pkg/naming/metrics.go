package naming

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal — исходы запросов к модели именования.
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airename_naming_requests_total",
			Help: "Naming requests by outcome",
		},
		[]string{"outcome"},
	)

	// parseTierTotal — какой способ разбора ответа сработал.
	parseTierTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airename_naming_parse_tier_total",
			Help: "Accepted names by reply parsing tier",
		},
		[]string{"tier"},
	)

	requestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airename_naming_duration_seconds",
			Help:    "Naming request duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
	)
)

const (
	outcomeOK           = "ok"
	outcomeConfig       = "config_error"
	outcomeUnauthorized = "invalid_credentials"
	outcomeUpstream     = "upstream_error"
)
