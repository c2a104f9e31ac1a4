package metrics

import (
	"mime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UploadMetrics tracks writes to the object storage backend.
//
// Metrics:
//   - tokengate_upload_requests_total: uploads by media type and result
//   - tokengate_upload_size_bytes: payload sizes
//   - tokengate_upload_duration_seconds: backend write latency
type UploadMetrics struct {
	total    *prometheus.CounterVec
	size     prometheus.Histogram
	duration prometheus.Histogram
}

// NewUploadMetrics creates and registers upload metrics with the provided registry.
func NewUploadMetrics(namespace string, registry prometheus.Registerer) *UploadMetrics {
	um := &UploadMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upload",
				Name:      "requests_total",
				Help:      "Total number of uploads to the storage backend",
			},
			[]string{"media_type", "result"},
		),

		size: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upload",
				Name:      "size_bytes",
				Help:      "Size of uploaded payloads in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KB to 16MB
			},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upload",
				Name:      "duration_seconds",
				Help:      "Duration of storage backend writes in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}

	registry.MustRegister(um.total, um.size, um.duration)
	return um
}

// Record records one upload.
func (um *UploadMetrics) Record(contentType string, size int, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	um.total.WithLabelValues(mediaTypeLabel(contentType), result).Inc()
	um.size.Observe(float64(size))
	um.duration.Observe(duration.Seconds())
}

// mediaTypeLabel reduces a content type to its top-level type so that
// caller-supplied values cannot grow the label set.
func mediaTypeLabel(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "other"
	}
	switch {
	case mediaType == "application/json":
		return "json"
	case len(mediaType) > 6 && mediaType[:6] == "image/":
		return "image"
	}
	return "other"
}
