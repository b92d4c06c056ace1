package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"StrengthRadar/pkg/collector"
	"StrengthRadar/pkg/model"
	"StrengthRadar/pkg/monitor"
	"StrengthRadar/pkg/repository"
)

// DefaultCandidateCap 进入技术面评估的候选股上限
const DefaultCandidateCap = 150

// ErrCatalogUnavailable 股票目录不存在或无法读取
var ErrCatalogUnavailable = errors.New("股票目录不可用")

// 回报给监控的组件名称
const (
	ComponentCatalog    = "catalog"
	ComponentBenchmark  = "benchmark"
	ComponentCalibrator = "calibrator"
	ComponentStrength   = "strength"
)

// StatusReporter 接收各阶段的健康状态：err 为 nil 表示健康，否则为 fallback 状态
type StatusReporter interface {
	Report(component string, err error, fallback string)
}

// Options 管道参数
type Options struct {
	CandidateCap    int
	ScoreThreshold  int
	HistorySessions int
	MinSessions     int
	FetchTimeout    time.Duration
}

// DefaultOptions 默认管道参数
func DefaultOptions() Options {
	return Options{
		CandidateCap:    DefaultCandidateCap,
		ScoreThreshold:  DefaultScoreThreshold,
		HistorySessions: DefaultHistorySessions,
		MinSessions:     DefaultMinSessions,
		FetchTimeout:    15 * time.Second,
	}
}

// Pipeline 完整的筛选管道：指数 → 基础过滤 → 价格校准 → 排名 → 技术强度 → 评分
type Pipeline struct {
	catalog    repository.CatalogReader
	benchmarks *BenchmarkTracker
	calibrator *Calibrator
	strength   *StrengthEngine
	scorer     *Scorer
	opts       Options
	logger     arbor.ILogger
	reporter   StatusReporter
	now        func() time.Time
}

// NewPipeline 创建管道
func NewPipeline(
	catalog repository.CatalogReader,
	source collector.QuoteSource,
	logger arbor.ILogger,
	opts Options,
) *Pipeline {
	if opts.CandidateCap <= 0 {
		opts.CandidateCap = DefaultCandidateCap
	}
	return &Pipeline{
		catalog:    catalog,
		benchmarks: NewBenchmarkTracker(source, logger, opts.FetchTimeout),
		calibrator: NewCalibrator(source, logger),
		strength:   NewStrengthEngine(source, logger, opts.HistorySessions, opts.MinSessions),
		scorer:     NewScorer(opts.ScoreThreshold).WithLogger(logger),
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// WithReporter 设置状态回报
func (p *Pipeline) WithReporter(r StatusReporter) *Pipeline {
	p.reporter = r
	return p
}

// Benchmarks 指数追踪器，供单独刷新指数使用
func (p *Pipeline) Benchmarks() *BenchmarkTracker {
	return p.benchmarks
}

// Build 执行一次完整重建，返回全新的快照
//
// 快照不以开高条件为键：GapUp 记录以目录数据判断为开高的代码，技术强度与推荐
// 另外对开高的跑赢大盘股取前 K 名评估一次，供开高视图使用。
func (p *Pipeline) Build(ctx context.Context, criteria model.FilterCriteria) (*model.PipelineSnapshot, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	criteria.GapUpOnly = false
	start := p.now()

	catalog, err := p.catalog.LoadCatalog(ctx)
	if err != nil {
		p.report(ComponentCatalog, err, monitor.StatusUnhealthy)
		if p.logger != nil {
			p.logger.Error().Err(err).Msg("股票目录载入失败")
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	p.report(ComponentCatalog, nil, "")

	snap := &model.PipelineSnapshot{
		ID:       uuid.New().String(),
		Criteria: criteria,
		GapUp:    make(map[string]bool),
		Stats: model.PipelineStats{
			TotalAnalyzed:     len(catalog.Stocks),
			CatalogUpdateTime: catalog.UpdateTime,
		},
	}

	// 阶层 0: 指数
	benchmarks, warnings := p.benchmarks.FetchAll(ctx)
	snap.Benchmarks = benchmarks
	snap.Warnings = append(snap.Warnings, warnings...)
	var benchErr error
	if len(warnings) > 0 {
		benchErr = errors.New(warnings[0])
	}
	p.report(ComponentBenchmark, benchErr, monitor.StatusDegraded)

	// 阶层 1: 基础过滤（目录数据）
	pool := ApplyBaseFilter(catalog.Records(), criteria)
	for _, r := range pool {
		if IsGapUp(r) {
			snap.GapUp[r.Code] = true
		}
	}

	// 即时价格校准，之后所有阶层使用同一批价格
	calibrated, err := p.calibrator.Calibrate(ctx, pool)
	switch {
	case err != nil:
		snap.Warnings = append(snap.Warnings, "即时价格校准失败，使用目录价格")
		if p.logger != nil {
			p.logger.Warn().Err(err).Msg("即时价格校准失败")
		}
	case calibrated < len(pool):
		msg := fmt.Sprintf("即时价格校准仅完成 %d/%d 档，其余沿用目录价格", calibrated, len(pool))
		snap.Warnings = append(snap.Warnings, msg)
		err = errors.New(msg)
		if p.logger != nil {
			p.logger.Warn().Int("calibrated", calibrated).Int("pool", len(pool)).Msg("即时价格校准不完整")
		}
	}
	p.report(ComponentCalibrator, err, monitor.StatusDegraded)
	snap.BasePool = pool
	snap.Stats.TotalFiltered = len(pool)
	snap.Stats.Calibrated = calibrated

	// 阶层 2: 跑赢大盘
	ranked := Rank(pool, benchmarks)
	snap.Ranked = ranked.Groups
	snap.Outperformers = ranked.Outperformers
	if snap.Outperformers == nil {
		snap.Outperformers = []model.OutperformerRecord{}
	}
	for _, o := range snap.Outperformers {
		switch o.Market {
		case model.MarketListed:
			snap.Stats.ListedOutperformers++
		case model.MarketOTC:
			snap.Stats.OTCOutperformers++
		}
	}

	// 阶层 3: 技术强度
	// 全部与开高两个分支各取前 K 名，合并后只发出一次历史K线批次
	topAll := TopCandidates(snap.Outperformers, p.opts.CandidateCap)
	topGapUp := TopCandidates(gapUpOutperformers(snap.Outperformers, snap.GapUp), p.opts.CandidateCap)
	strong, err := p.strength.Evaluate(ctx, unionCandidates(topAll, topGapUp))
	if err != nil {
		snap.Warnings = append(snap.Warnings, "历史K线无法取得，强势股清单为空")
		if p.logger != nil {
			p.logger.Warn().Err(err).Msg("技术强度评估失败")
		}
	}
	p.report(ComponentStrength, err, monitor.StatusDegraded)
	snap.StrongCandidates = strongAmong(strong, topAll)
	snap.GapUpStrongCandidates = strongAmong(strong, topGapUp)
	snap.Stats.StrongCount = len(snap.StrongCandidates)

	// 阶层 4: 推荐
	snap.Recommendations = p.scorer.Recommend(snap.StrongCandidates)
	snap.GapUpRecommendations = p.scorer.Recommend(snap.GapUpStrongCandidates)
	snap.CreatedAt = p.now()

	if p.logger != nil {
		p.logger.Info().
			Str("snapshot", snap.ID).
			Int("catalog", snap.Stats.TotalAnalyzed).
			Int("base_pool", len(snap.BasePool)).
			Int("outperformers", len(snap.Outperformers)).
			Int("strong", len(snap.StrongCandidates)).
			Int("recommendations", len(snap.Recommendations)).
			Str("elapsed", snap.CreatedAt.Sub(start).String()).
			Msg("快照重建完成")
	}
	return snap, nil
}

func (p *Pipeline) report(component string, err error, fallback string) {
	if p.reporter != nil {
		p.reporter.Report(component, err, fallback)
	}
}

// gapUpOutperformers 保留开高的跑赢大盘股，维持原排序
func gapUpOutperformers(records []model.OutperformerRecord, gapUp map[string]bool) []model.OutperformerRecord {
	out := make([]model.OutperformerRecord, 0, len(records))
	for _, r := range records {
		if gapUp[r.Code] {
			out = append(out, r)
		}
	}
	return out
}

// unionCandidates 合并两组候选股，依代码去重
func unionCandidates(a, b []model.OutperformerRecord) []model.OutperformerRecord {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]model.OutperformerRecord, 0, len(a)+len(b))
	for _, group := range [][]model.OutperformerRecord{a, b} {
		for _, r := range group {
			if !seen[r.Code] {
				seen[r.Code] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// strongAmong 取出属于 candidates 的强势股，维持强势股排序
func strongAmong(strong []model.StrongCandidate, candidates []model.OutperformerRecord) []model.StrongCandidate {
	in := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		in[c.Code] = true
	}
	out := make([]model.StrongCandidate, 0, len(strong))
	for _, s := range strong {
		if in[s.Code] {
			out = append(out, s)
		}
	}
	return out
}
