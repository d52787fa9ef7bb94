package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// submissionsTotal counts accepted submissions by result
	// ("created" or "replayed").
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of accepted contact submissions.",
		},
		[]string{"result"},
	)

	// deletionsTotal counts delete requests by result
	// ("deleted" or "missing").
	deletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_deletions_total",
			Help: "Total number of contact delete requests.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(submissionsTotal, deletionsTotal)
}
