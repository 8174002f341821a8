package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"memescan/internal/config"
	"memescan/internal/domain/entity"
	"memescan/internal/domain/service/market"
	"memescan/internal/domain/service/scoring"
	"memescan/internal/domain/service/tracker"
	"memescan/internal/infrastructure/gecko"
	"memescan/internal/infrastructure/notifier"
	"memescan/internal/infrastructure/persistence"
	"memescan/internal/infrastructure/redisstore"
	"memescan/internal/infrastructure/stonfi"
	"memescan/internal/infrastructure/tonapi"
	"memescan/internal/infrastructure/upstream"
	"memescan/internal/server"
	"memescan/internal/worker"
	"memescan/pkg/application/connectors"
	"memescan/pkg/application/modules"
	"memescan/pkg/contextx"
	"memescan/pkg/logx"
	"memescan/pkg/middlewarex"
	"memescan/pkg/probe"
)

const alertQueueSize = 100

func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log := logx.New(os.Stdout, cfg.App.LogLevel, cfg.App.LogFormat).With(
		slog.String(logx.FieldAppName, cfg.App.Name),
		slog.String(logx.FieldAppVersion, cfg.App.Version),
	)
	slog.SetDefault(log)

	ctx = contextx.WithLogger(ctx, log)

	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	rds := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	redisClient := rds.Client(ctx)
	defer rds.Close(ctx)

	aggregator, err := newAggregator(cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer aggregator.Close()

	labelRepo := persistence.NewLabelRepository(db)
	tokenRepo := persistence.NewTokenRepository(db)

	scoringEngine := scoring.NewEngine(labelRepo)
	tokenTracker := tracker.NewTracker(aggregator, tokenRepo)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Bot.Enabled() {
		alerts := make(chan entity.Alert, alertQueueSize)
		tokenTracker.WithAlerts(alerts)

		bot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		if err := bot.SendText(ctx, "🚀 memescan started, alerts are on."); err != nil {
			log.Warn("failed to send startup message", logx.Error(err))
		}

		g.Go(func() error {
			return ignoreCanceled(bot.Run(ctx, alerts))
		})
	} else {
		log.Warn("BOT_TOKEN is empty, alerts are disabled")
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseNumber,
	}

	queue := asynq.NewClient(redisOpt)
	defer queue.Close()

	handlers := worker.NewTaskHandlers(tokenTracker)

	modules.AsynqServer{
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisAddress:  cfg.Redis.Address,
		RedisDB:       cfg.Redis.DatabaseNumber,
		Concurrency:   cfg.Crawler.Concurrency,
	}.Run(ctx, g, modules.AsynqQueues{worker.QueueTracking: 1},
		modules.AsynqHandler{Pattern: worker.TypeTrackToken, Handle: handlers.HandleTrack},
		modules.AsynqHandler{Pattern: worker.TypeRugCheck, Handle: handlers.HandleRugCheck},
	)

	if cfg.Crawler.Enabled {
		crawler := worker.NewCrawler(
			aggregator,
			tokenTracker,
			redisstore.NewSeenMarker(redisClient, redisstore.DefaultSeenPrefix),
			queue,
			worker.CrawlerConfig{
				Interval:       cfg.Crawler.Interval,
				ReanalyzeAfter: cfg.Crawler.ReanalyzeAfter,
				RugCheckEvery:  cfg.Crawler.RugCheckEvery,
			},
		).WithWatchlist(worker.NewWatchlist(cfg.Crawler.Watchlist...))

		g.Go(func() error {
			return ignoreCanceled(crawler.Run(ctx))
		})
	}

	api := server.NewServer(
		server.NewScoreServer(scoringEngine),
		server.NewMarketServer(aggregator),
		server.NewTrackerServer(tokenTracker),
	)

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger(log),
		middlewarex.Recovery,
		middlewarex.RequestLogging(logx.NewSensitiveDataMasker(), cfg.HTTP.LogFieldMaxLen),
		middlewarex.ResponseLogging(logx.NewSensitiveDataMasker(), cfg.HTTP.LogFieldMaxLen),
	)
	api.RegisterRoutes(router)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, &http.Server{
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	})

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Probe.ListenAddress,
		Checks: []probe.Check{
			{Name: "postgres", Probe: pg.Ping},
			{Name: "redis", Probe: rds.Ping},
		},
	}.Run(ctx, g)

	modules.MetricServer{ListenAddress: cfg.Metrics.ListenAddress}.Run(ctx, g)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("errgroup.Wait: %w", err)
	}

	return nil
}

// newAggregator собирает клиентов апстримов: у каждого свой пул соединений,
// свой breaker и общий набор метрик.
func newAggregator(cfg config.Config, reg prometheus.Registerer) (*market.Aggregator, error) {
	metrics := upstream.NewMetrics(reg)
	src := cfg.Sources

	stonAPI, err := upstream.New(upstream.Config{
		Name:            stonfi.SourceName,
		BaseURL:         src.StonfiBaseURL,
		Timeout:         src.Timeout,
		BreakerFailures: src.BreakerFailures,
		BreakerTimeout:  src.BreakerTimeout,
		LogFieldMaxLen:  cfg.HTTP.LogFieldMaxLen,
	}, upstream.WithMetrics(metrics))
	if err != nil {
		return nil, fmt.Errorf("upstream.New(%s): %w", stonfi.SourceName, err)
	}

	tonAPI, err := upstream.New(upstream.Config{
		Name:            tonapi.SourceName,
		BaseURL:         src.TonAPIBaseURL,
		Timeout:         src.Timeout,
		BearerToken:     src.TonAPIKey,
		BreakerFailures: src.BreakerFailures,
		BreakerTimeout:  src.BreakerTimeout,
		LogFieldMaxLen:  cfg.HTTP.LogFieldMaxLen,
	}, upstream.WithMetrics(metrics))
	if err != nil {
		return nil, fmt.Errorf("upstream.New(%s): %w", tonapi.SourceName, err)
	}

	geckoAPI, err := upstream.New(upstream.Config{
		Name:            gecko.SourceName,
		BaseURL:         src.GeckoBaseURL,
		Timeout:         src.Timeout,
		MinInterval:     src.GeckoMinInterval,
		BreakerFailures: src.BreakerFailures,
		BreakerTimeout:  src.BreakerTimeout,
		LogFieldMaxLen:  cfg.HTTP.LogFieldMaxLen,
	}, upstream.WithMetrics(metrics))
	if err != nil {
		return nil, fmt.Errorf("upstream.New(%s): %w", gecko.SourceName, err)
	}

	aggregator, err := market.New(
		stonfi.New(stonAPI),
		gecko.New(geckoAPI, src.GeckoNetwork),
		tonapi.New(tonAPI),
	)
	if err != nil {
		return nil, fmt.Errorf("market.New: %w", err)
	}

	return aggregator, nil
}

// ignoreCanceled штатная остановка по ctx не должна ронять errgroup.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
