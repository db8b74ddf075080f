package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindRoot    = "root"
	kindComment = "comment"

	resultOk    = "ok"
	resultError = "error"
)

var (
	threadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threads_created_total",
			Help: "Total number of thread creation attempts",
		},
		[]string{"kind", "result"},
	)

	threadsPopulated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "threads_populated_nodes",
			Help:    "Number of nodes in a populated thread tree",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	linksRepaired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threads_links_repaired_total",
			Help: "Total number of missing links restored by the repair pass",
		},
		[]string{"link"},
	)
)
