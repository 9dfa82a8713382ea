package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var aggregationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "feedr_aggregation_duration_seconds",
		Help:    "Duration of scatter/gather review aggregations.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"operation", "outcome"},
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
