// Package metrics exposes Prometheus instrumentation for the counter store
// and the voice pipeline.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/j-veylop/dhikr-tally/internal/logger"
)

var (
	incrementsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dhikr_tally",
		Subsystem: "counter",
		Name:      "increments_total",
		Help:      "Number of increments applied per counter namespace.",
	}, []string{"namespace"})

	storageErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dhikr_tally",
		Subsystem: "counter",
		Name:      "storage_errors_total",
		Help:      "Number of masked storage failures grouped by namespace and kind.",
	}, []string{"namespace", "kind"})

	degradedGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "dhikr_tally",
		Subsystem: "counter",
		Name:      "degraded",
		Help:      "1 while writes for the namespace keep failing, 0 otherwise.",
	}, []string{"namespace"})

	transcriptsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dhikr_tally",
		Subsystem: "voice",
		Name:      "transcripts_total",
		Help:      "Number of transcripts handled grouped by outcome.",
	}, []string{"outcome"})

	transcribeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dhikr_tally",
		Subsystem: "voice",
		Name:      "transcribe_duration_seconds",
		Help:      "Latency of calls to the transcription endpoint.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(incrementsCounter, storageErrorCounter, degradedGauge, transcriptsCounter, transcribeDuration)
}

// Storage error kinds.
const (
	KindRead   = "read"
	KindWrite  = "write"
	KindDecode = "decode"
)

// Transcript outcomes.
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomeFailed    = "failed"
)

// RecordIncrement counts one increment for namespace.
func RecordIncrement(namespace string) {
	incrementsCounter.WithLabelValues(namespace).Inc()
}

// RecordStorageError counts one masked storage failure.
func RecordStorageError(namespace, kind string) {
	storageErrorCounter.WithLabelValues(namespace, kind).Inc()
}

// SetDegraded flips the degraded gauge for namespace.
func SetDegraded(namespace string, degraded bool) {
	v := 0.0
	if degraded {
		v = 1
	}
	degradedGauge.WithLabelValues(namespace).Set(v)
}

// RecordTranscript counts one handled transcript.
func RecordTranscript(outcome string) {
	transcriptsCounter.WithLabelValues(outcome).Inc()
}

// ObserveTranscribe records how long a transcription call took.
func ObserveTranscribe(d time.Duration) {
	transcribeDuration.Observe(d.Seconds())
}

// Serve exposes /metrics on addr until ctx is done. An empty addr disables
// the endpoint.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}()

	logger.Info("metrics endpoint listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
