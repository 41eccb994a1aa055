package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GreenChain-Markets/exchange/pkg/logger"
)

var (
	TradesSettledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_trades_settled_total",
			Help: "Total number of settled carbon credit trades.",
		},
	)

	OrdersUnmatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_orders_unmatched_total",
			Help: "Total number of buy orders that found no eligible listing.",
		},
	)

	LedgerBlocksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_ledger_blocks_total",
			Help: "Total number of blocks appended to the ledger (excluding genesis).",
		},
	)

	InquiriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_listing_inquiries_total",
			Help: "Total number of buyer inquiries recorded against listings.",
		},
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exchange_order_match_duration_seconds",
			Help:    "Duration of the match-and-settle critical section.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_http_requests_total",
			Help: "Total HTTP requests served (by route and status).",
		},
		[]string{"route", "status"},
	)

	NATSPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_nats_publish_errors_total",
			Help: "Number of NATS publish failures.",
		},
		[]string{"subject"},
	)
)

// ObserveSince records the elapsed time since start on a histogram.
func ObserveSince(h prometheus.Histogram, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// StartServer exposes /metrics on its own listener.
func StartServer(addr string) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.S().Errorw("metrics server stopped", "addr", addr, "error", err)
		}
	}()
}
