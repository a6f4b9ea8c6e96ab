package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var accessDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "careteam_access_decisions_total",
		Help: "Access enforcement decisions per trainee sub-collection.",
	},
	[]string{"collection", "decision"},
)

func recordDecision(collection Collection, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	accessDecisions.WithLabelValues(string(collection), decision).Inc()
}
