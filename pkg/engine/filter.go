package engine

import "StrengthRadar/pkg/model"

// ApplyBaseFilter 价格区间、市值下限、成交量下限（张），设置 GapUpOnly 时再要求开高
//
// 保持目录原有顺序，不修改输入。
func ApplyBaseFilter(records []model.StockRecord, criteria model.FilterCriteria) []model.StockRecord {
	minShares := criteria.MinVolumeShares()
	out := make([]model.StockRecord, 0, len(records))
	for _, r := range records {
		if r.Price < criteria.MinPrice || r.Price > criteria.MaxPrice {
			continue
		}
		if r.MarketCap < criteria.MinMarketCap {
			continue
		}
		if float64(r.Volume) < minShares {
			continue
		}
		if criteria.GapUpOnly && !IsGapUp(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// IsGapUp 开盘价高于由现价与涨跌幅逆推的昨收；没有开盘价视为不符合
func IsGapUp(r model.StockRecord) bool {
	if !r.HasOpen() {
		return false
	}
	prev := model.DerivePreviousClose(r.Price, r.ChangePct)
	return prev > 0 && *r.OpenPrice > prev
}
