package services

import "github.com/prometheus/client_golang/prometheus"

var (
	placeMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "place_mutations_total",
			Help: "Total number of committed place and review mutations",
		},
		[]string{"operation"},
	)
	persistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "place_persist_failures_total",
			Help: "Total number of failed writes of the places blob",
		},
	)
	adminLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_logins_total",
			Help: "Admin login attempts by result",
		},
		[]string{"result"},
	)
)

// InitMetrics registers the service metrics. Call this once from main.go
func InitMetrics() {
	prometheus.MustRegister(placeMutationsTotal)
	prometheus.MustRegister(persistFailuresTotal)
	prometheus.MustRegister(adminLoginsTotal)
}
