package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "vaultswap"

type metrics struct {
	registry     *prometheus.Registry
	instructions *prometheus.CounterVec
	transactions *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "instructions_total",
			Help:      "Number of executed program instructions, nested calls included.",
		}, []string{"program", "result"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transactions_total",
			Help:      "Number of executed transactions.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.instructions, m.transactions)
	return m
}

func resultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
