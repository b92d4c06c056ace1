package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"StrengthRadar/pkg/config"
	"StrengthRadar/pkg/database"
	"StrengthRadar/pkg/logger"
	"StrengthRadar/pkg/monitor"
)

// 独立的巡检服务：定期探测 API 就绪状态与数据库
func main() {
	cfg, err := config.LoadOrDefault(config.GetDefaultConfigPath())
	if err != nil {
		logger.GetLogger().Error().Err(err).Msg("加载配置失败")
		os.Exit(1)
	}
	log := logger.InitLogger(cfg)
	log.Info().Msg("启动监控服务...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon := monitor.NewMonitor(func(component, status, message string) {
		log.Warn().Str("component", component).Str("status", status).Msgf("告警: %s", message)
	})

	client := &http.Client{Timeout: 5 * time.Second}
	readyURL := fmt.Sprintf("http://localhost:%s/ready", cfg.API.Port)
	mon.StartChecking(ctx, "api-service", func(ctx context.Context) error {
		return probeHTTP(ctx, client, readyURL)
	}, 30*time.Second)

	if cfg.Catalog.Source == "database" {
		db, err := database.NewPostgres(cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("连接数据库失败，跳过数据库巡检")
		} else {
			defer db.Close()
			mon.StartChecking(ctx, "database", func(context.Context) error { return db.Ping() }, time.Minute)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, mon.GetAllStatus())
	})

	srv := &http.Server{Addr: ":8081", Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", srv.Addr).Msg("监控服务启动")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("启动HTTP服务器失败")
		os.Exit(1)
	}
}

func probeHTTP(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("状态码 %d", resp.StatusCode)
	}
	return nil
}
