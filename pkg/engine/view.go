package engine

import "StrengthRadar/pkg/model"

// SnapshotView 快照依查询条件过滤后的内容，不修改快照本身
type SnapshotView struct {
	Snapshot         *model.PipelineSnapshot
	BasePool         []model.StockRecord
	Ranked           map[model.MarketSegment][]model.OutperformerRecord
	Outperformers    []model.OutperformerRecord
	StrongCandidates []model.StrongCandidate
	Recommendations  []model.RecommendationRecord
}

// NewView 建立视图；gapUpOnly 时只保留目录数据判断为开高的股票
func NewView(snap *model.PipelineSnapshot, gapUpOnly bool) SnapshotView {
	if !gapUpOnly {
		return SnapshotView{
			Snapshot:         snap,
			BasePool:         snap.BasePool,
			Ranked:           snap.Ranked,
			Outperformers:    snap.Outperformers,
			StrongCandidates: snap.StrongCandidates,
			Recommendations:  snap.Recommendations,
		}
	}

	keep := func(code string) bool { return snap.GapUp[code] }
	v := SnapshotView{
		Snapshot:         snap,
		BasePool:         []model.StockRecord{},
		Ranked:           make(map[model.MarketSegment][]model.OutperformerRecord, len(snap.Ranked)),
		Outperformers:    []model.OutperformerRecord{},
		StrongCandidates: []model.StrongCandidate{},
		Recommendations:  []model.RecommendationRecord{},
	}
	for _, r := range snap.BasePool {
		if keep(r.Code) {
			v.BasePool = append(v.BasePool, r)
		}
	}
	for seg, group := range snap.Ranked {
		filtered := []model.OutperformerRecord{}
		for _, r := range group {
			if keep(r.Code) {
				filtered = append(filtered, r)
			}
		}
		v.Ranked[seg] = filtered
	}
	for _, r := range snap.Outperformers {
		if keep(r.Code) {
			v.Outperformers = append(v.Outperformers, r)
		}
	}
	// 强势股与推荐取开高分支独立评估的结果；未评估过开高分支的快照退回依代码过滤
	if snap.GapUpStrongCandidates != nil {
		v.StrongCandidates = snap.GapUpStrongCandidates
	} else {
		for _, r := range snap.StrongCandidates {
			if keep(r.Code) {
				v.StrongCandidates = append(v.StrongCandidates, r)
			}
		}
	}
	if snap.GapUpRecommendations != nil {
		v.Recommendations = snap.GapUpRecommendations
	} else {
		for _, r := range snap.Recommendations {
			if keep(r.Code) {
				v.Recommendations = append(v.Recommendations, r)
			}
		}
	}
	return v
}

// OutperformerCounts 视图内各市场跑赢大盘家数
func (v SnapshotView) OutperformerCounts() (listed, otc int) {
	for _, r := range v.Outperformers {
		if r.Market == model.MarketOTC {
			otc++
		} else {
			listed++
		}
	}
	return listed, otc
}
