// Package metrics provides Prometheus metrics for the journal monitor.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usn_events_total",
			Help: "Total number of change records emitted",
		},
		[]string{"volume", "operation"},
	)

	excludedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usn_excluded_total",
			Help: "Change records dropped by the exclusion filter",
		},
		[]string{"volume"},
	)

	requeryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usn_requery_total",
			Help: "Journal re-acquisitions after invalidation",
		},
		[]string{"volume"},
	)

	readErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usn_read_errors_total",
			Help: "Transient journal read failures",
		},
		[]string{"volume"},
	)

	parseAbortsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usn_parse_aborts_total",
			Help: "Read buffers whose decoding stopped on a malformed record",
		},
		[]string{"volume", "reason"},
	)

	activeWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "usn_active_workers",
			Help: "Number of running volume workers",
		},
	)
)

// RecordEvent counts an emitted change record.
func RecordEvent(volume, operation string) {
	eventsTotal.WithLabelValues(volume, operation).Inc()
}

func RecordExcluded(volume string) {
	excludedTotal.WithLabelValues(volume).Inc()
}

func RecordRequery(volume string) {
	requeryTotal.WithLabelValues(volume).Inc()
}

func RecordReadError(volume string) {
	readErrorsTotal.WithLabelValues(volume).Inc()
}

func RecordParseAbort(volume, reason string) {
	parseAbortsTotal.WithLabelValues(volume, reason).Inc()
}

// WorkerStarted / WorkerStopped track the active worker gauge.
func WorkerStarted() { activeWorkers.Inc() }
func WorkerStopped() { activeWorkers.Dec() }

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
