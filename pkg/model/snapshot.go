package model

import "time"

// OutperformerRecord 附带 alpha 的股票记录
type OutperformerRecord struct {
	StockRecord
	Alpha float64 `json:"alpha"`
}

// TechnicalSnapshot 单一候选股的技术指标（序列本身评分后丢弃）
type TechnicalSnapshot struct {
	Close         float64   `json:"close"`
	MAShort       float64   `json:"ma_short"` // MA5，不足时为 NaN
	MALong        float64   `json:"ma_long"`  // MA20，不足时为 NaN
	RSI           float64   `json:"rsi"`      // RSI14，不足时为 NaN
	Sessions      int       `json:"sessions"`
	ReferenceDate time.Time `json:"reference_date"`
}

// StrongCandidate 强势股：守住实体高点天数 ≥ 1
type StrongCandidate struct {
	OutperformerRecord
	Streak      int               `json:"streak"`
	StreakLabel string            `json:"streak_label"`
	Technical   TechnicalSnapshot `json:"technical"`
}

// RecommendationRecord 最终推荐，创建后不再修改
type RecommendationRecord struct {
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Price     float64       `json:"price"`
	ChangePct float64       `json:"change_pct"`
	Alpha     float64       `json:"alpha"`
	Volume    int64         `json:"volume"`
	Market    MarketSegment `json:"market"`
	Score     int           `json:"score"`
	Reasons   []string      `json:"reasons"`
}

// PipelineStats 管道统计
type PipelineStats struct {
	TotalAnalyzed       int    `json:"total_analyzed"` // 目录总数
	TotalFiltered       int    `json:"total_filtered"` // 基础池数量
	ListedOutperformers int    `json:"listed_outperformers"`
	OTCOutperformers    int    `json:"otc_outperformers"`
	Calibrated          int    `json:"calibrated"`
	StrongCount         int    `json:"strong_count"`
	CatalogUpdateTime   string `json:"catalog_update_time,omitempty"`
}

// PipelineSnapshot 一次完整管道运行的结果，替换后旧实例对持有者仍然有效
type PipelineSnapshot struct {
	ID         string                           `json:"id"`
	Criteria   FilterCriteria                   `json:"criteria"`
	Benchmarks map[MarketSegment]BenchmarkQuote `json:"benchmarks"`
	CreatedAt  time.Time                        `json:"created_at"`

	// 阶层 1~4
	BasePool         []StockRecord                          `json:"base_pool"`
	Ranked           map[MarketSegment][]OutperformerRecord `json:"ranked"`
	Outperformers    []OutperformerRecord                   `json:"outperformers"`
	StrongCandidates []StrongCandidate                      `json:"strong_candidates"`
	Recommendations  []RecommendationRecord                 `json:"recommendations"`
	// 开高分支：对开高的跑赢大盘股另取前 K 名评估
	GapUpStrongCandidates []StrongCandidate      `json:"gap_up_strong_candidates"`
	GapUpRecommendations  []RecommendationRecord `json:"gap_up_recommendations"`

	// GapUp 以目录数据判断开高的股票代码
	GapUp    map[string]bool `json:"-"`
	Stats    PipelineStats   `json:"stats"`
	Warnings []string        `json:"warnings,omitempty"`
}

// TopRecommendations 取前 n 个推荐，n <= 0 表示全部
func (p *PipelineSnapshot) TopRecommendations(n int) []RecommendationRecord {
	if n <= 0 || n >= len(p.Recommendations) {
		return p.Recommendations
	}
	return p.Recommendations[:n]
}
