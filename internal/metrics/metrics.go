package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "grid_ticks_ingested_total", Help: "Trade ticks converted to the canonical shape"},
		[]string{"source"},
	)
	BacktestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "grid_backtests_total", Help: "Backtest runs completed"},
		[]string{"mode"},
	)
	FetchPages = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "grid_fetch_pages_total", Help: "Trade pages fetched from the provider"},
	)
	FetchRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "grid_fetch_retries_total", Help: "Rate-limited fetches retried with backoff"},
	)
)

func init() {
	prometheus.MustRegister(TicksIngested, BacktestsTotal, FetchPages, FetchRetries)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
