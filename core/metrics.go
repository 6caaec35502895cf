package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

const decisionMetricName = "phtunnel_proxy_decisions_total"

// NewDecisionCounter returns the counter of proxied requests by the
// blocklist rule that decided them ("none" for allowed requests).
func NewDecisionCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: decisionMetricName,
			Help: "Proxied requests by blocklist rule. rule=\"none\" counts forwarded requests.",
		},
		[]string{"rule"},
	)
}
