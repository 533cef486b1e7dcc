package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ListingsCreated prometheus.Counter
	RentsConfirmed  prometheus.Counter
	RentConflicts   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ListingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_listings_created_total",
			Help: "Total number of listings created",
		}),
		RentsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_rents_confirmed_total",
			Help: "Total number of successful rent confirmations",
		}),
		RentConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_rent_conflicts_total",
			Help: "Total number of rent confirmations lost to a concurrent winner",
		}),
	}
}
