package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"

	"github.com/GreenChain-Markets/exchange/internal/api"
	"github.com/GreenChain-Markets/exchange/internal/config"
	"github.com/GreenChain-Markets/exchange/internal/jobs"
	"github.com/GreenChain-Markets/exchange/internal/ledger"
	"github.com/GreenChain-Markets/exchange/internal/legacy"
	"github.com/GreenChain-Markets/exchange/internal/market"
	"github.com/GreenChain-Markets/exchange/internal/metrics"
	"github.com/GreenChain-Markets/exchange/internal/publisher"
	"github.com/GreenChain-Markets/exchange/internal/registry"
	"github.com/GreenChain-Markets/exchange/internal/store"
	"github.com/GreenChain-Markets/exchange/pkg/eventbus"
	"github.com/GreenChain-Markets/exchange/pkg/logger"
	"github.com/GreenChain-Markets/exchange/pkg/model"
	"github.com/GreenChain-Markets/exchange/pkg/secrets"
	"github.com/GreenChain-Markets/exchange/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [exchange]...")

	// --- Resolve DB credentials (AWS Secrets Manager outside dev) ---
	databaseURL := cfg.DatabaseURL
	if cfg.Env != "dev" && cfg.DBSecretName != "" {
		awsProvider, err := secrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}
		dsnCache := secrets.NewCache[string](cfg.SecretCacheTTL)
		if dsn, ok := dsnCache.Get(cfg.DBSecretName); ok {
			databaseURL = dsn
		} else {
			secret, err := awsProvider.GetSecret(ctx, cfg.DBSecretName)
			if err != nil {
				logg.Fatalw("failed to fetch DB secret", "secret", cfg.DBSecretName, "error", err)
			}
			if dsn, ok := secret["dsn"]; ok {
				databaseURL = dsn
				dsnCache.Put(cfg.DBSecretName, dsn)
			}
		}
	}
	if databaseURL != "" {
		logg.Info("connection to DSN: ", utils.MaskDSN(databaseURL))
	}

	// --- Connect to NATS (optional) ---
	var nc *nats.Conn
	var pub *publisher.Publisher
	if cfg.NATSURL != "" {
		var err error
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Warnw("failed to connect to NATS; events disabled", "error", err)
			nc = nil
		} else {
			pub, err = publisher.New(nc, cfg.OutboundSubject, cfg.ServiceName)
			if err != nil {
				logg.Fatalw("failed to init publisher", "error", err)
			}
		}
	}

	// --- Store (Redis projection cache, optional) ---
	var st store.Store
	if cfg.RedisAddr != "" {
		var err error
		st, err = store.New(cfg.RedisAddr, cfg.RedisDB, logger.L())
		if err != nil {
			logg.Warnw("failed to init redis store; projections disabled", "error", err)
			st = nil
		}
	}

	// --- Legacy trade mirror (Postgres, optional) ---
	var pool *pgxpool.Pool
	var tradeSync *legacy.TradeSyncWriter
	if databaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, databaseURL)
		if err != nil {
			logg.Warnw("failed to init pg pool; trade mirror disabled", "error", err)
		} else {
			tradeSync = legacy.NewTradeSyncWriter(pool, logger.L(), cfg.ServiceName)
		}
	}

	// --- Core: ledger, registry, matching engine ---
	bus := eventbus.New()
	led := ledger.New(logger.L())
	reg := registry.New(logger.L())
	reg.AttachBus(bus)
	engine := market.NewEngine(reg, led, bus, logger.L())

	// --- Event wiring: side effects live here, never in the core ---
	if pub != nil {
		bus.Subscribe(model.TradeSettledEvent{}, func(event interface{}) {
			ev := event.(model.TradeSettledEvent)
			if err := pub.PublishTradeSettled(ctx, ev); err != nil {
				logg.Warnw("trade settled event publish failed",
					"transaction_id", ev.Transaction.ID, "error", err)
			}
		})
		bus.Subscribe(model.InquiryRecordedEvent{}, func(event interface{}) {
			ev := event.(model.InquiryRecordedEvent)
			if err := pub.PublishInquiryRecorded(ctx, ev); err != nil {
				logg.Warnw("inquiry event publish failed",
					"listing_id", ev.Contact.ListingID, "error", err)
			}
		})
		bus.Subscribe(model.ListingCreatedEvent{}, func(event interface{}) {
			ev := event.(model.ListingCreatedEvent)
			if err := pub.PublishListingCreated(ctx, ev); err != nil {
				logg.Warnw("listing event publish failed",
					"listing_id", ev.Listing.ID, "error", err)
			}
		})
		bus.Subscribe(model.CompanyRegisteredEvent{}, func(event interface{}) {
			ev := event.(model.CompanyRegisteredEvent)
			if err := pub.PublishCompanyRegistered(ctx, ev); err != nil {
				logg.Warnw("registration event publish failed",
					"company_id", ev.Company.ID, "error", err)
			}
		})
	}
	if tradeSync != nil {
		bus.Subscribe(model.TradeSettledEvent{}, func(event interface{}) {
			ev := event.(model.TradeSettledEvent)
			syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tradeSync.SyncTrade(syncCtx, &ev.Transaction); err != nil {
				logg.Warnw("trade mirror sync failed",
					"transaction_id", ev.Transaction.ID, "error", err)
			}
		})
	}

	// --- Stats refresher ---
	var sink jobs.EventSink
	if pub != nil {
		sink = pub
	}
	refresher := jobs.NewStatsRefresher(logger.L(), engine, st, sink, cfg.StatsRefreshInterval)
	go refresher.Start(ctx)

	// --- Metrics endpoint ---
	metrics.StartServer(fmt.Sprintf(":%d", cfg.MetricsPort))

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	handler := api.NewHandler(logger.L(), engine, reg, led, st)
	api.RegisterRoutes(app, nc, st, handler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[exchange] running",
		"nats", cfg.NATSURL,
		"env", cfg.Env,
		"stats_refresh", cfg.StatsRefreshInterval)

	<-ctx.Done()
	logg.Info("shutting down [exchange]...")

	refresher.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	if pool != nil {
		pool.Close()
	}
	if st != nil {
		if err := st.Close(); err != nil {
			logg.Warnw("store.close_failed", "error", err)
		}
	}
}
