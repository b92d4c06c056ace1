package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"StrengthRadar/pkg/api"
	"StrengthRadar/pkg/collector"
	"StrengthRadar/pkg/config"
	"StrengthRadar/pkg/database"
	"StrengthRadar/pkg/engine"
	"StrengthRadar/pkg/logger"
	"StrengthRadar/pkg/messaging"
	"StrengthRadar/pkg/monitor"
	"StrengthRadar/pkg/repository"
	"StrengthRadar/pkg/scheduler"
)

func main() {
	// 加载配置
	cfg, err := config.LoadOrDefault(config.GetDefaultConfigPath())
	if err != nil {
		logger.GetLogger().Error().Err(err).Msg("加载配置失败")
		os.Exit(1)
	}

	log := logger.InitLogger(cfg)
	log.Info().Str("env", cfg.App.Env).Msg("启动API服务...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("API服务异常退出")
		os.Exit(1)
	}
	log.Info().Msg("API服务已关闭")
}

func run(ctx context.Context, cfg *config.Config, log arbor.ILogger) error {
	// 行情源
	yahoo := cfg.DataSources.Yahoo
	client := collector.NewYahooClient(
		collector.WithBaseURL(yahoo.BaseURL),
		collector.WithTimeout(yahoo.Timeout),
		collector.WithRateLimit(yahoo.RateLimit),
		collector.WithLogger(log),
	)
	source := collector.NewYahooAdapter(client, log, yahoo.Workers, cfg.Pipeline.FetchTimeout)

	// 监控
	mon := monitor.NewMonitor(func(component, status, message string) {
		log.Warn().Str("component", component).Str("status", status).Msg(message)
	})
	for _, c := range []string{engine.ComponentCatalog, engine.ComponentBenchmark, engine.ComponentCalibrator, engine.ComponentStrength} {
		mon.RegisterComponent(c)
	}

	// 股票目录
	catalog, closeCatalog, err := openCatalog(ctx, cfg, mon, log)
	if err != nil {
		return err
	}
	defer closeCatalog()

	// 管道与快照缓存
	pipeline := engine.NewPipeline(catalog, source, log, engine.Options{
		CandidateCap:    cfg.Pipeline.CandidateCap,
		ScoreThreshold:  cfg.Pipeline.ScoreThreshold,
		HistorySessions: cfg.Pipeline.HistorySessions,
		MinSessions:     cfg.Pipeline.MinSessions,
		FetchTimeout:    cfg.Pipeline.FetchTimeout,
	}).WithReporter(mon)
	cache := engine.NewSnapshotCache(pipeline, log)

	// 定时推送
	if cfg.Scheduler.Enabled {
		publisher, err := messaging.NewNATSPublisher(ctx, cfg.NATS.URL, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		mon.StartChecking(ctx, "nats", func(context.Context) error {
			if !publisher.IsConnected() {
				return messaging.ErrNotConnected
			}
			return nil
		}, 30*time.Second)

		sched := scheduler.NewScheduler(cache, publisher, log, scheduler.OptionsFromConfig(cfg))
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	handlers := api.NewHandlers(cache, pipeline.Benchmarks(), mon, log)
	server := api.NewServer(cfg.API.Port, cfg.API.ReadTimeout, cfg.API.WriteTimeout, log)
	server.SetupRoutes(handlers)

	return server.Run(ctx)
}

// openCatalog 依配置选择文件或数据库目录
func openCatalog(ctx context.Context, cfg *config.Config, mon *monitor.Monitor, log arbor.ILogger) (repository.CatalogReader, func(), error) {
	switch cfg.Catalog.Source {
	case "database":
		db, err := database.NewPostgres(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		mon.StartChecking(ctx, "database", func(context.Context) error { return db.Ping() }, time.Minute)
		log.Info().Str("host", cfg.Database.Postgres.Host).Msg("使用数据库股票目录")
		return db.Catalog(), func() { _ = db.Close() }, nil
	case "file":
		log.Info().Str("path", cfg.Catalog.Path).Msg("使用文件股票目录")
		return repository.NewFileCatalog(cfg.Catalog.Path, log), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("未知的目录来源: %s", cfg.Catalog.Source)
	}
}
