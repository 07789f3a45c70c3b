package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LogLinesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrapedeck_log_lines_received_total",
		Help: "Total number of log events received from the service feed",
	})

	StreamConnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrapedeck_stream_connects_total",
		Help: "Total number of log feed subscriptions opened",
	})

	StreamDisconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrapedeck_stream_disconnects_total",
		Help: "Total number of log feed disruptions",
	})

	StatusPolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrapedeck_status_polls_total",
		Help: "Total number of status queries issued",
	})

	StatusPollFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrapedeck_status_poll_failures_total",
		Help: "Total number of status queries that failed",
	})

	StatusPollsStale = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrapedeck_status_polls_stale_total",
		Help: "Total number of status responses dropped because a newer one was already published",
	})

	StatusPollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scrapedeck_status_poll_duration_seconds",
		Help:    "Status query duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrapedeck_commands_total",
		Help: "Commands issued by outcome",
	}, []string{"command", "outcome"})
)

// Serve exposes /metrics on addr until ctx ends. An empty addr disables it.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if addr == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listener started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
