package api

import (
	"math"
	"time"

	"StrengthRadar/pkg/model"
)

// round2 内部计算保持全精度，只在输出时取两位
func round2(v float64) float64 {
	return model.Round2(v)
}

// optional2 指标不足（NaN）时输出 null
func optional2(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := round2(v)
	return &r
}

// BenchmarkDTO 指数
type BenchmarkDTO struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Value     float64 `json:"value"`
	ChangePct float64 `json:"change_pct"`
	Available bool    `json:"available"`
}

// StockDTO 股票
type StockDTO struct {
	Code      string              `json:"code"`
	Name      string              `json:"name"`
	Market    model.MarketSegment `json:"market"`
	Price     float64             `json:"price"`
	ChangePct float64             `json:"change_pct"`
	Volume    int64               `json:"volume"`
	MarketCap float64             `json:"market_cap"`
	Alpha     *float64            `json:"alpha,omitempty"`
}

// StrongDTO 强势股
type StrongDTO struct {
	StockDTO
	Streak        int      `json:"streak"`
	StreakLabel   string   `json:"streak_label"`
	MA5           *float64 `json:"ma5"`
	MA20          *float64 `json:"ma20"`
	RSI           *float64 `json:"rsi"`
	Sessions      int      `json:"sessions"`
	ReferenceDate string   `json:"reference_date,omitempty"`
}

// RecommendationDTO 推荐
type RecommendationDTO struct {
	Code      string              `json:"code"`
	Name      string              `json:"name"`
	Market    model.MarketSegment `json:"market"`
	Price     float64             `json:"price"`
	ChangePct float64             `json:"change_pct"`
	Alpha     float64             `json:"alpha"`
	Volume    int64               `json:"volume"`
	Score     int                 `json:"score"`
	Reasons   []string            `json:"reasons"`
}

// StatsDTO 统计
type StatsDTO struct {
	TotalAnalyzed       int    `json:"total_analyzed"`
	TotalFiltered       int    `json:"total_filtered"`
	ListedOutperformers int    `json:"listed_outperformers"`
	OTCOutperformers    int    `json:"otc_outperformers"`
	Calibrated          int    `json:"calibrated"`
	StrongCount         int    `json:"strong_count"`
	RecommendationCount int    `json:"recommendation_count"`
	UpdateTime          string `json:"update_time,omitempty"`
}

// SnapshotMeta 每个回应共用的快照信息
type SnapshotMeta struct {
	Success    bool                    `json:"success"`
	SnapshotID string                  `json:"snapshot_id"`
	CreatedAt  time.Time               `json:"created_at"`
	Criteria   model.FilterCriteria    `json:"criteria"`
	Benchmarks map[string]BenchmarkDTO `json:"benchmarks"`
	Stats      StatsDTO                `json:"stats"`
	Warnings   []string                `json:"warnings,omitempty"`
}

func benchmarkDTO(q model.BenchmarkQuote) BenchmarkDTO {
	return BenchmarkDTO{
		Name:      q.Name,
		Symbol:    q.Symbol,
		Value:     round2(q.Value),
		ChangePct: round2(q.ChangePct),
		Available: q.Available(),
	}
}

func benchmarksDTO(quotes map[model.MarketSegment]model.BenchmarkQuote) map[string]BenchmarkDTO {
	out := make(map[string]BenchmarkDTO, len(quotes))
	for seg, q := range quotes {
		out[segmentKey(seg)] = benchmarkDTO(q)
	}
	return out
}

func segmentKey(seg model.MarketSegment) string {
	if seg == model.MarketOTC {
		return "otc"
	}
	return "listed"
}

func stockDTO(r model.StockRecord) StockDTO {
	return StockDTO{
		Code:      r.Code,
		Name:      r.Name,
		Market:    r.Market,
		Price:     round2(r.Price),
		ChangePct: round2(r.ChangePct),
		Volume:    r.Volume,
		MarketCap: r.MarketCap,
	}
}

func outperformerDTO(r model.OutperformerRecord) StockDTO {
	dto := stockDTO(r.StockRecord)
	alpha := round2(r.Alpha)
	dto.Alpha = &alpha
	return dto
}

func stocksDTO(records []model.StockRecord) []StockDTO {
	out := make([]StockDTO, 0, len(records))
	for _, r := range records {
		out = append(out, stockDTO(r))
	}
	return out
}

func outperformersDTO(records []model.OutperformerRecord) []StockDTO {
	out := make([]StockDTO, 0, len(records))
	for _, r := range records {
		out = append(out, outperformerDTO(r))
	}
	return out
}

func strongDTO(c model.StrongCandidate) StrongDTO {
	dto := StrongDTO{
		StockDTO:    outperformerDTO(c.OutperformerRecord),
		Streak:      c.Streak,
		StreakLabel: c.StreakLabel,
		MA5:         optional2(c.Technical.MAShort),
		MA20:        optional2(c.Technical.MALong),
		RSI:         optional2(c.Technical.RSI),
		Sessions:    c.Technical.Sessions,
	}
	if !c.Technical.ReferenceDate.IsZero() {
		dto.ReferenceDate = c.Technical.ReferenceDate.Format("2006-01-02")
	}
	return dto
}

func recommendationDTO(r model.RecommendationRecord) RecommendationDTO {
	return RecommendationDTO{
		Code:      r.Code,
		Name:      r.Name,
		Market:    r.Market,
		Price:     round2(r.Price),
		ChangePct: round2(r.ChangePct),
		Alpha:     round2(r.Alpha),
		Volume:    r.Volume,
		Score:     r.Score,
		Reasons:   r.Reasons,
	}
}
