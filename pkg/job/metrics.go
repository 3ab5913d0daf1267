package job

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cmdb",
		Subsystem: "job",
		Name:      "processed_total",
		Help:      "Jobs finished by the worker, labeled by operation and terminal status.",
	}, []string{"operation", "status"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cmdb",
		Subsystem: "job",
		Name:      "duration_seconds",
		Help:      "Handler execution time, labeled by operation.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"operation"})

	jobWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cmdb",
		Subsystem: "job",
		Name:      "dependency_waits_total",
		Help:      "Jobs that had to wait for a dependent job before running.",
	})

	jobsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cmdb",
		Subsystem: "job",
		Name:      "expired_total",
		Help:      "Processing jobs marked timed out by the stale sweeper.",
	})
)
