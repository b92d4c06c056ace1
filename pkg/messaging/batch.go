package messaging

import (
	"time"

	"github.com/google/uuid"

	"StrengthRadar/pkg/model"
)

// RecommendationBatch 一次推送的推荐内容
type RecommendationBatch struct {
	ID              string                                       `json:"id"`
	CreatedAt       time.Time                                    `json:"created_at"`
	SnapshotID      string                                       `json:"snapshot_id"`
	Criteria        model.FilterCriteria                         `json:"criteria"`
	Benchmarks      map[model.MarketSegment]model.BenchmarkQuote `json:"benchmarks"`
	Recommendations []model.RecommendationRecord                 `json:"recommendations"`
	Warnings        []string                                     `json:"warnings,omitempty"`
}

// NewRecommendationBatch 从快照取前 topN 个推荐组成批次，数值与 API 输出一样取两位小数
func NewRecommendationBatch(snap *model.PipelineSnapshot, topN int, now time.Time) RecommendationBatch {
	recs := snap.TopRecommendations(topN)
	out := make([]model.RecommendationRecord, len(recs))
	for i, r := range recs {
		r.Price = model.Round2(r.Price)
		r.ChangePct = model.Round2(r.ChangePct)
		r.Alpha = model.Round2(r.Alpha)
		out[i] = r
	}

	benchmarks := make(map[model.MarketSegment]model.BenchmarkQuote, len(snap.Benchmarks))
	for seg, q := range snap.Benchmarks {
		q.Value = model.Round2(q.Value)
		q.ChangePct = model.Round2(q.ChangePct)
		benchmarks[seg] = q
	}

	return RecommendationBatch{
		ID:              uuid.New().String(),
		CreatedAt:       now,
		SnapshotID:      snap.ID,
		Criteria:        snap.Criteria,
		Benchmarks:      benchmarks,
		Recommendations: out,
		Warnings:        snap.Warnings,
	}
}

// Empty 没有任何推荐
func (b RecommendationBatch) Empty() bool {
	return len(b.Recommendations) == 0
}
