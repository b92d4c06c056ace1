package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"StrengthRadar/pkg/collector"
	"StrengthRadar/pkg/config"
	"StrengthRadar/pkg/engine"
	"StrengthRadar/pkg/logger"
	"StrengthRadar/pkg/model"
	"StrengthRadar/pkg/repository"
)

func main() {
	defaults := model.DefaultCriteria()

	configPath := flag.String("config", config.GetDefaultConfigPath(), "配置文件路径")
	catalogPath := flag.String("catalog", "", "股票目录文件，覆盖配置")
	minPrice := flag.Float64("min-price", defaults.MinPrice, "最低股价")
	maxPrice := flag.Float64("max-price", defaults.MaxPrice, "最高股价")
	minCap := flag.Float64("min-market-cap", defaults.MinMarketCap, "最小市值（元）")
	minLots := flag.Float64("min-volume", defaults.MinVolumeLots, "最小成交量（张）")
	gapUp := flag.Bool("gap-up", false, "只看开高")
	top := flag.Int("top", 10, "显示推荐数量，0 表示全部")
	asJSON := flag.Bool("json", false, "以 JSON 输出")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		logger.GetLogger().Error().Err(err).Msg("加载配置失败")
		os.Exit(1)
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	log := logger.InitLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	yahoo := cfg.DataSources.Yahoo
	client := collector.NewYahooClient(
		collector.WithBaseURL(yahoo.BaseURL),
		collector.WithTimeout(yahoo.Timeout),
		collector.WithRateLimit(yahoo.RateLimit),
		collector.WithLogger(log),
	)
	source := collector.NewYahooAdapter(client, log, yahoo.Workers, cfg.Pipeline.FetchTimeout)

	pipeline := engine.NewPipeline(repository.NewFileCatalog(cfg.Catalog.Path, log), source, log, engine.Options{
		CandidateCap:    cfg.Pipeline.CandidateCap,
		ScoreThreshold:  cfg.Pipeline.ScoreThreshold,
		HistorySessions: cfg.Pipeline.HistorySessions,
		MinSessions:     cfg.Pipeline.MinSessions,
		FetchTimeout:    cfg.Pipeline.FetchTimeout,
	})

	criteria := model.FilterCriteria{
		MinPrice:      *minPrice,
		MaxPrice:      *maxPrice,
		MinMarketCap:  *minCap,
		MinVolumeLots: *minLots,
	}
	snap, err := pipeline.Build(ctx, criteria)
	if err != nil {
		log.Error().Err(err).Msg("筛选失败")
		os.Exit(1)
	}

	view := engine.NewView(snap, *gapUp)
	recs := view.Recommendations
	if *top > 0 && *top < len(recs) {
		recs = recs[:*top]
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(recs); err != nil {
			log.Error().Err(err).Msg("输出失败")
			os.Exit(1)
		}
		return
	}

	printSummary(snap, view)
	printRecommendations(recs)
}

func printSummary(snap *model.PipelineSnapshot, view engine.SnapshotView) {
	for _, seg := range model.Segments() {
		q := snap.Benchmarks[seg]
		if !q.Available() {
			fmt.Printf("%s: 无法取得\n", seg)
			continue
		}
		fmt.Printf("%s %s: %.2f (%+.2f%%)\n", seg, q.Name, q.Value, q.ChangePct)
	}
	listed, otc := view.OutperformerCounts()
	fmt.Printf("分析 %d 档，基础池 %d 档，跑赢大盘 上市 %d / 上柜 %d，强势 %d 档\n",
		snap.Stats.TotalAnalyzed, snap.Stats.TotalFiltered, listed, otc, len(view.StrongCandidates))
	for _, w := range snap.Warnings {
		fmt.Printf("警告: %s\n", w)
	}
	fmt.Println()
}

func printRecommendations(recs []model.RecommendationRecord) {
	if len(recs) == 0 {
		fmt.Println("没有符合条件的推荐")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "代码\t名称\t股价\t涨幅%\tAlpha\t评分\t理由")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%+.2f\t%+.2f\t%d\t%v\n",
			r.Code, r.Name, r.Price, r.ChangePct, r.Alpha, r.Score, r.Reasons)
	}
	w.Flush()
}
