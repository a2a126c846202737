package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Download outcome labels for TranscriptDownloadsTotal
const (
	StatusDownloaded  = "downloaded"
	StatusSkipped     = "skipped"
	StatusUnavailable = "unavailable"
	StatusFailed      = "failed"
)

// Transcript download metrics
var (
	TranscriptDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_downloads_total",
			Help: "Total number of processed videos by outcome.",
		},
		[]string{"status"},
	)

	FetchRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transcript_fetch_retries_total",
			Help: "Total number of retries scheduled after a failed API request.",
		},
	)

	FetchAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "transcript_fetch_attempts",
			Help:    "Number of attempts needed per API request, including the final one.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(
		TranscriptDownloadsTotal,
		FetchRetriesTotal,
		FetchAttempts,
	)
}
