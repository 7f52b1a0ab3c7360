// Package metrics exposes prometheus counters for sync runs. The CLI can serve
// them on an ephemeral /metrics endpoint for the duration of a run.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	AccountsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barista_accounts_processed_total",
		Help: "Accounts processed by sync runs",
	}, []string{"job", "status"})

	ItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barista_items_total",
		Help: "Per-item sync operations by kind and outcome",
	}, []string{"operation", "status"})

	PreferenceWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barista_preference_writes_total",
		Help: "Preference broadcasts by outcome",
	}, []string{"status"})
)

// Item operation labels.
const (
	OpListAdd   = "list_add"
	OpUnblock   = "unblock"
	OpSubscribe = "subscribe"
)

// Outcome labels.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Serve exposes /metrics on addr until the returned stop function is called.
// Scrape failures are the operator's problem; the listener never blocks a run.
func Serve(addr string) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics listener started")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
