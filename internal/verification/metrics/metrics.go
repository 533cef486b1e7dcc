package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsSubmitted prometheus.Counter
	RequestsReviewed  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		RequestsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_verification_requests_submitted_total",
			Help: "Total number of verification requests submitted",
		}),
		RequestsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rently_verification_requests_reviewed_total",
			Help: "Total number of verification requests reviewed, by outcome",
		}, []string{"outcome"}),
	}
}
