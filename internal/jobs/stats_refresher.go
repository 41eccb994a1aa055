package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GreenChain-Markets/exchange/internal/market"
	"github.com/GreenChain-Markets/exchange/internal/store"
)

// EventSink is the minimal publisher surface the refresher needs.
type EventSink interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// StatsRefresher periodically recomputes market statistics and projects them
// into the cache so read-heavy endpoints and external dashboards can serve
// them without locking the engine.
type StatsRefresher struct {
	logger   *zap.Logger
	engine   *market.Engine
	store    store.Store
	sink     EventSink
	interval time.Duration
	stopCh   chan struct{}
}

// NewStatsRefresher constructs a background job that runs periodically.
// store and sink may be nil; the corresponding step is skipped.
func NewStatsRefresher(logger *zap.Logger, engine *market.Engine, st store.Store, sink EventSink, interval time.Duration) *StatsRefresher {
	return &StatsRefresher{
		logger:   logger,
		engine:   engine,
		store:    st,
		sink:     sink,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the refresh loop until Stop or context cancellation.
func (r *StatsRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("stats_refresher.started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx)
		case <-r.stopCh:
			r.logger.Info("stats_refresher.stopped (manual stop)")
			return
		case <-ctx.Done():
			r.logger.Info("stats_refresher.stopped (context canceled)")
			return
		}
	}
}

// Stop gracefully halts the refresher.
func (r *StatsRefresher) Stop() {
	close(r.stopCh)
}

// runOnce executes one refresh cycle.
func (r *StatsRefresher) runOnce(ctx context.Context) {
	start := time.Now()

	stats := r.engine.Stats()
	chainLen := r.engine.ChainLength()

	if r.store != nil {
		if err := r.store.SetStats(ctx, stats); err != nil {
			r.logger.Error("stats_refresher.cache_write_failed", zap.Error(err))
			return
		}
		if err := r.store.SetChainLength(ctx, chainLen); err != nil {
			r.logger.Error("stats_refresher.chain_length_write_failed", zap.Error(err))
		}
	}

	if r.sink != nil {
		event := map[string]any{
			"event":        "evt.exchange.stats.refreshed.v1",
			"timestamp":    time.Now().UTC(),
			"chain_length": chainLen,
			"stats":        stats,
		}
		if err := r.sink.Publish(ctx, "evt.exchange.stats.refreshed.v1", event); err != nil {
			r.logger.Warn("stats_refresher.nats_publish_failed", zap.Error(err))
		}
	}

	r.logger.Info("stats_refresher.success",
		zap.Int("transactions", stats.TotalTransactions),
		zap.Int("chain_length", chainLen),
		zap.Duration("duration", time.Since(start)))
}
