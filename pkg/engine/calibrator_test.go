package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StrengthRadar/pkg/model"
)

func TestCalibrator_SingleBatch(t *testing.T) {
	src := newFakeSource()
	src.set("2330.TW", model.Series{
		{Date: day(0), Open: 600, Close: 600, Volume: 20_000_000},
		{Date: day(1), Open: 605, Close: 612, Volume: 31_000_000},
	})
	src.set("3443.TWO", model.Series{
		{Date: day(1), Open: 990, Close: 995, Volume: 0},
	})

	records := []model.StockRecord{
		record("2330", model.MarketListed, 600, 590, 10, 1),
		record("3443", model.MarketOTC, 1000, 1010, 500_000, 1),
		record("6488", model.MarketOTC, 400, 400, 7, 1),
	}

	n, err := NewCalibrator(src, nil).Calibrate(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Equal(t, 1, src.batchCount(), "exactly one batched request")
	assert.ElementsMatch(t, []string{"2330.TW", "3443.TWO", "6488.TWO"}, src.batches[0])
	assert.Equal(t, CalibrationSessions, src.sessions[0])

	tsmc := records[0]
	assert.Equal(t, 612.0, tsmc.Price)
	assert.Equal(t, 600.0, tsmc.PreviousClose)
	assert.InDelta(t, 2.0, tsmc.ChangePct, 1e-9)
	assert.Equal(t, int64(31_000_000), tsmc.Volume)

	// 只有一日数据：昨收由旧价格与涨跌幅逆推，零成交量不覆盖
	gui := records[1]
	assert.Equal(t, 995.0, gui.Price)
	assert.InDelta(t, 1010.0, gui.PreviousClose, 1e-9)
	assert.InDelta(t, (995.0-1010.0)/1010.0*100, gui.ChangePct, 1e-9)
	assert.Equal(t, int64(500_000), gui.Volume)

	// 无数据的代码保持原值
	assert.Equal(t, record("6488", model.MarketOTC, 400, 400, 7, 1), records[2])
}

func TestCalibrator_TotalFailureKeepsValues(t *testing.T) {
	src := newFakeSource()
	src.failAll = true

	records := []model.StockRecord{record("2330", model.MarketListed, 600, 590, 10, 1)}
	before := records[0]

	n, err := NewCalibrator(src, nil).Calibrate(context.Background(), records)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, before, records[0])
}

func TestCalibrator_SkipsEmptyLatestBar(t *testing.T) {
	src := newFakeSource()
	src.set("2330.TW", model.Series{
		{Date: day(0), Open: 600, Close: 610, Volume: 100},
		{Date: day(1)},
	})
	records := []model.StockRecord{record("2330", model.MarketListed, 600, 590, 10, 1)}

	n, err := NewCalibrator(src, nil).Calibrate(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 610.0, records[0].Price)
	assert.InDelta(t, 590.0, records[0].PreviousClose, 1e-9)
	assert.Equal(t, int64(100), records[0].Volume)
}

func TestCalibrator_Empty(t *testing.T) {
	src := newFakeSource()
	n, err := NewCalibrator(src, nil).Calibrate(context.Background(), nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, src.batchCount())
}
