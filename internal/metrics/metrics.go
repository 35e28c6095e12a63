// Package metrics provides Prometheus metrics for Quill.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quill",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AnalysesTotal counts completed analyses by path ("primary" or "fallback").
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "analyses_total",
			Help:      "Total number of completed journal analyses",
		},
		[]string{"path"},
	)

	// ModelLoadRetries counts retried model acquisition attempts.
	ModelLoadRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "model_load_retries_total",
			Help:      "Total number of retried model load attempts",
		},
	)

	// EncryptionOperations counts envelope encryption operations.
	EncryptionOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "encryption_operations_total",
			Help:      "Total number of encryption/decryption operations",
		},
		[]string{"operation"}, // "encrypt" or "decrypt"
	)

	// VaultStateChanges counts vault state transitions by resulting state.
	VaultStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "vault_state_changes_total",
			Help:      "Total number of vault state transitions",
		},
		[]string{"state"},
	)
)
