package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StrengthRadar/pkg/model"
)

func outperformer(code string, market model.MarketSegment, price, changePct, alpha float64) model.OutperformerRecord {
	return model.OutperformerRecord{
		StockRecord: model.StockRecord{Code: code, Name: code, Market: market, Price: price, ChangePct: changePct, Volume: 1_000_000},
		Alpha:       alpha,
	}
}

func TestStrengthEngine_Evaluate(t *testing.T) {
	src := newFakeSource()
	src.set("2330.TW", risingSeries(25, 100, 1)) // 连续 24 日
	src.set("2317.TW", risingSeries(25, 100, 1)) // 连续 24 日，涨幅较小
	src.set("3443.TWO", risingSeries(6, 100, 1)) // 交易日不足
	falling := risingSeries(25, 200, -1)         // 一路下跌，天数 0
	src.set("6488.TWO", falling)
	short := risingSeries(12, 50, 1)
	short[7].Open, short[7].Close = 80, 80 // 中途出现高点，天数 3
	src.set("8069.TWO", short)

	candidates := []model.OutperformerRecord{
		outperformer("2317", model.MarketListed, 124, 1.0, 0.5),
		outperformer("2330", model.MarketListed, 124, 2.0, 1.5),
		outperformer("3443", model.MarketOTC, 105, 3.0, 2.8),
		outperformer("6488", model.MarketOTC, 176, 0.5, 0.3),
		outperformer("8069", model.MarketOTC, 61, 4.0, 3.8),
		outperformer("9999", model.MarketOTC, 10, 9.0, 8.8), // 无数据
	}

	strong, err := NewStrengthEngine(src, nil, 45, 10).Evaluate(context.Background(), candidates)
	require.NoError(t, err)
	require.Equal(t, 1, src.batchCount(), "one batched history request")
	assert.Equal(t, 45, src.sessions[0])

	require.Len(t, strong, 3)
	assert.Equal(t, "2330", strong[0].Code)
	assert.Equal(t, 24, strong[0].Streak)
	assert.Equal(t, "2317", strong[1].Code, "same streak, lower change")
	assert.Equal(t, "8069", strong[2].Code)
	assert.Equal(t, 3, strong[2].Streak)

	tech := strong[0].Technical
	assert.Equal(t, 25, tech.Sessions)
	assert.InDelta(t, 122.0, tech.MAShort, 1e-9)
	assert.InDelta(t, 114.5, tech.MALong, 1e-9)
	assert.Contains(t, strong[0].StreakLabel, "🔥")
}

func TestStrengthEngine_FailureAndEmpty(t *testing.T) {
	src := newFakeSource()
	src.failAll = true
	engine := NewStrengthEngine(src, nil, 0, 0)

	strong, err := engine.Evaluate(context.Background(), []model.OutperformerRecord{outperformer("2330", model.MarketListed, 1, 1, 1)})
	assert.Error(t, err)
	assert.Empty(t, strong)

	strong, err = engine.Evaluate(context.Background(), nil)
	assert.NoError(t, err)
	assert.NotNil(t, strong)
	assert.Empty(t, strong)
}
