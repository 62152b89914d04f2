/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commitbuilder

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coding_agent_commit_builds_total",
			Help: "Total number of commit builds by outcome",
		},
		[]string{"outcome"},
	)

	buildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coding_agent_commit_build_duration_seconds",
			Help:    "Wall time of commit builds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"outcome"},
	)

	blobCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coding_agent_commit_blobs_uploaded_total",
			Help: "Total number of blobs uploaded to git hosts",
		},
	)

	blobBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coding_agent_commit_blob_bytes_uploaded_total",
			Help: "Total blob content bytes uploaded to git hosts",
		},
	)

	retryCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coding_agent_commit_read_retries_total",
			Help: "Total number of retried git host reads",
		},
		[]string{"operation"},
	)
)

func observeBuild(start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	buildCounter.WithLabelValues(outcome).Inc()
	buildDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
