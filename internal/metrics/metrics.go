package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "volumelog"

var (
	// Registry is a dedicated Prometheus registry for the writer.
	Registry = prometheus.NewRegistry()

	// EntriesWritten counts log entries successfully appended.
	EntriesWritten = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_written_total",
			Help:      "Total number of log entries appended",
		},
	)

	// AppendErrors counts failed filesystem operations by step.
	AppendErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "append_errors_total",
			Help:      "Total number of failed filesystem operations",
		},
		[]string{"op"}, // mkdir | open | write | sync | close
	)

	// AppendDuration measures a full open/write/close cycle.
	AppendDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "append_duration_ms",
			Help:      "Duration of a single append cycle in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// RunsTotal counts writer runs by outcome.
	RunsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of writer runs",
		},
		[]string{"outcome"}, // success | failure
	)
)

func init() {
	Registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	Registry.MustRegister(prometheus.NewGoCollector())
}

// ObserveAppend records one append cycle. An empty failedOp means success.
func ObserveAppend(start time.Time, failedOp string) {
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	AppendDuration.Observe(elapsed)
	if failedOp != "" {
		AppendErrors.WithLabelValues(failedOp).Inc()
		return
	}
	EntriesWritten.Inc()
}

// ObserveRun records the outcome of a whole run.
func ObserveRun(err error) {
	if err != nil {
		RunsTotal.WithLabelValues("failure").Inc()
		return
	}
	RunsTotal.WithLabelValues("success").Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	srv := &http.Server{Addr: addr, Handler: mux}

	idleClosed := make(chan struct{})
	go func() {
		defer close(idleClosed)
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Printf("metrics endpoint listening on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-idleClosed
		return nil
	}

	return err
}
