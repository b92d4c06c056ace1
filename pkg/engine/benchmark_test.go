package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StrengthRadar/pkg/collector"
	"StrengthRadar/pkg/model"
)

func TestQuoteFromSeries(t *testing.T) {
	q, err := QuoteFromSeries("加权指数", "^TWII", indexSeries(20000, 20100))
	require.NoError(t, err)
	assert.Equal(t, 20100.0, q.Value)
	assert.InDelta(t, 0.5, q.ChangePct, 1e-9)
	assert.True(t, q.Available())

	single, err := QuoteFromSeries("柜买指数", "^TWOII", model.Series{{Date: day(0), Close: 250}})
	require.NoError(t, err)
	assert.Equal(t, 250.0, single.Value)
	assert.Zero(t, single.ChangePct)

	empty, err := QuoteFromSeries("柜买指数", "^TWOII", nil)
	assert.Error(t, err)
	assert.False(t, empty.Available())
	assert.Zero(t, empty.ChangePct)
}

func TestBenchmarkTracker_FetchAll(t *testing.T) {
	src := newFakeSource()
	src.set(collector.SymbolTAIEX, indexSeries(20000, 20100))
	src.failing[collector.SymbolTPEx] = true

	quotes, warnings := NewBenchmarkTracker(src, nil, 0).FetchAll(context.Background())
	require.Len(t, quotes, 2)
	assert.InDelta(t, 0.5, quotes[model.MarketListed].ChangePct, 1e-9)
	assert.Equal(t, "加权指数", quotes[model.MarketListed].Name)

	otc := quotes[model.MarketOTC]
	assert.Equal(t, model.BenchmarkQuote{Name: "柜买指数", Symbol: "^TWOII"}, otc)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "柜买指数")
}

func TestBenchmarkTracker_EmptySeriesIsUnavailable(t *testing.T) {
	src := newFakeSource()
	quotes, warnings := NewBenchmarkTracker(src, nil, 0).FetchAll(context.Background())
	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "加权指数")
	assert.Contains(t, warnings[1], "柜买指数")
	for _, q := range quotes {
		assert.Zero(t, q.Value)
		assert.Zero(t, q.ChangePct)
	}
}
