package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"

	"StrengthRadar/pkg/collector"
	"StrengthRadar/pkg/indicator"
	"StrengthRadar/pkg/model"
)

const (
	// DefaultHistorySessions 技术面抓取的交易日数
	DefaultHistorySessions = 45
	// DefaultMinSessions 少于此交易日数的候选股不评估
	DefaultMinSessions = 10
)

// StrengthEngine 技术强度评估
//
// 历史K线批次不设整体期限，单一代码的超时由行情源负责。
type StrengthEngine struct {
	source          collector.QuoteSource
	logger          arbor.ILogger
	historySessions int
	minSessions     int
}

// NewStrengthEngine 创建技术强度引擎
func NewStrengthEngine(source collector.QuoteSource, logger arbor.ILogger, historySessions, minSessions int) *StrengthEngine {
	if historySessions <= 0 {
		historySessions = DefaultHistorySessions
	}
	if minSessions <= 0 {
		minSessions = DefaultMinSessions
	}
	return &StrengthEngine{
		source:          source,
		logger:          logger,
		historySessions: historySessions,
		minSessions:     minSessions,
	}
}

// Evaluate 一次批次抓取历史K线，筛出守住实体高点天数 >= 1 的强势股
//
// 结果依天数降序，其次涨跌幅降序，最后代码升序。
func (s *StrengthEngine) Evaluate(ctx context.Context, candidates []model.OutperformerRecord) ([]model.StrongCandidate, error) {
	if len(candidates) == 0 {
		return []model.StrongCandidate{}, nil
	}

	symbols := make([]string, len(candidates))
	for i, c := range candidates {
		symbols[i] = collector.Symbol(c.Code, c.Market)
	}

	batch, err := s.source.GetRecentSeriesBatch(ctx, symbols, s.historySessions)
	if err != nil && len(batch) == 0 {
		return []model.StrongCandidate{}, fmt.Errorf("获取历史K线失败: %w", err)
	}

	strong := make([]model.StrongCandidate, 0, len(candidates))
	short := 0
	for i, c := range candidates {
		series, ok := batch[symbols[i]]
		if !ok {
			continue
		}
		sc, ok, enough := s.evaluateOne(c, series)
		if !enough {
			short++
			continue
		}
		if ok {
			strong = append(strong, sc)
		}
	}

	sort.SliceStable(strong, func(i, j int) bool {
		a, b := strong[i], strong[j]
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		if a.ChangePct != b.ChangePct {
			return a.ChangePct > b.ChangePct
		}
		return a.Code < b.Code
	})

	if s.logger != nil {
		s.logger.Debug().Int("candidates", len(candidates)).Int("strong", len(strong)).Int("insufficient", short).Msg("技术强度评估完成")
	}
	return strong, nil
}

// evaluateOne 第三个返回值为 false 表示有效交易日不足
func (s *StrengthEngine) evaluateOne(c model.OutperformerRecord, series model.Series) (model.StrongCandidate, bool, bool) {
	compact := series.Compact()
	if len(compact.Valid()) < s.minSessions {
		return model.StrongCandidate{}, false, false
	}

	streak := indicator.HighDays(compact)
	if !streak.Strong {
		return model.StrongCandidate{}, false, true
	}

	return model.StrongCandidate{
		OutperformerRecord: c,
		Streak:             streak.Count,
		StreakLabel:        streak.Label,
		Technical:          indicator.Compute(compact),
	}, true, true
}
