package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"StrengthRadar/pkg/config"
	"StrengthRadar/pkg/database"
	"StrengthRadar/pkg/logger"
	"StrengthRadar/pkg/repository"
)

// 将 JSON 股票目录导入 Postgres，供 catalog.source=database 使用
func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "配置文件路径")
	catalogPath := flag.String("file", "", "股票目录文件，默认使用配置中的路径")
	dryRun := flag.Bool("dry-run", false, "只解析不写入")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		logger.GetLogger().Error().Err(err).Msg("加载配置失败")
		os.Exit(1)
	}
	log := logger.InitLogger(cfg)

	path := cfg.Catalog.Path
	if *catalogPath != "" {
		path = *catalogPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := repository.NewFileCatalog(path, log).LoadCatalog(ctx)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("读取股票目录失败")
		os.Exit(1)
	}
	log.Info().
		Str("path", path).
		Str("update_time", catalog.UpdateTime).
		Int("stocks", len(catalog.Stocks)).
		Msg("股票目录解析完成")

	if *dryRun {
		return
	}

	db, err := database.NewPostgres(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("连接数据库失败")
		os.Exit(1)
	}
	defer db.Close()

	store := db.Catalog()
	if err := store.AutoMigrate(); err != nil {
		log.Error().Err(err).Msg("建立目录表失败")
		os.Exit(1)
	}
	if err := store.SaveBatch(ctx, catalog.Stocks); err != nil {
		log.Error().Err(err).Msg("写入股票目录失败")
		os.Exit(1)
	}

	total, err := store.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("统计目录数量失败")
		return
	}
	log.Info().Int64("total", total).Msg("股票目录已导入")
}
