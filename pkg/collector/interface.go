package collector

import (
	"context"

	"StrengthRadar/pkg/model"
)

// QuoteSource 行情数据来源
//
// 序列一律由旧到新；批次结果中缺少的代码表示该代码无数据，不视为整批失败。
type QuoteSource interface {
	GetRecentSeries(ctx context.Context, symbol string, sessions int) (model.Series, error)
	GetRecentSeriesBatch(ctx context.Context, symbols []string, sessions int) (map[string]model.Series, error)
}
