package engine

import (
	"math"
	"sort"

	"StrengthRadar/pkg/model"
)

// RankResult 排名结果
type RankResult struct {
	// Groups 各市场全部股票，依 alpha 排序
	Groups map[model.MarketSegment][]model.OutperformerRecord
	// Outperformers 两个市场中 alpha > 0 的股票，同样依 alpha 排序
	Outperformers []model.OutperformerRecord
}

// Rank 计算 alpha = 涨跌幅 - 所属市场指数涨跌幅，并分组排序
//
// 指数缺失或为零值时 alpha 等于原始涨跌幅。
func Rank(pool []model.StockRecord, benchmarks map[model.MarketSegment]model.BenchmarkQuote) RankResult {
	result := RankResult{Groups: make(map[model.MarketSegment][]model.OutperformerRecord, 2)}
	for _, segment := range model.Segments() {
		result.Groups[segment] = []model.OutperformerRecord{}
	}

	for _, r := range pool {
		rec := model.OutperformerRecord{
			StockRecord: r,
			Alpha:       r.ChangePct - benchmarks[r.Market].ChangePct,
		}
		result.Groups[r.Market] = append(result.Groups[r.Market], rec)
		if rec.Alpha > 0 {
			result.Outperformers = append(result.Outperformers, rec)
		}
	}

	for _, group := range result.Groups {
		sortByAlpha(group)
	}
	sortByAlpha(result.Outperformers)
	return result
}

// sortByAlpha alpha 降序，其次涨跌幅绝对值降序，最后代码升序
func sortByAlpha(records []model.OutperformerRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Alpha != b.Alpha {
			return a.Alpha > b.Alpha
		}
		if ca, cb := math.Abs(a.ChangePct), math.Abs(b.ChangePct); ca != cb {
			return ca > cb
		}
		return a.Code < b.Code
	})
}

// TopCandidates 取前 k 名，k <= 0 表示全部
func TopCandidates(records []model.OutperformerRecord, k int) []model.OutperformerRecord {
	if k <= 0 || k >= len(records) {
		return records
	}
	return records[:k]
}
