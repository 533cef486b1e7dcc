package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TrustEdgesAdded    prometheus.Counter
	TrustEdgesRemoved  prometheus.Counter
	CommunitiesCreated prometheus.Counter
	CommunityJoins     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TrustEdgesAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_trust_edges_added_total",
			Help: "Total number of trust edges added",
		}),
		TrustEdgesRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_trust_edges_removed_total",
			Help: "Total number of trust edges removed",
		}),
		CommunitiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_communities_created_total",
			Help: "Total number of communities created",
		}),
		CommunityJoins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_community_joins_total",
			Help: "Total number of community joins",
		}),
	}
}
