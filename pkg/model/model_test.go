package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockRecord_Validate(t *testing.T) {
	ok := StockRecord{Code: "2330", Market: MarketListed, Price: 1000}
	assert.NoError(t, ok.Validate())

	cases := map[string]StockRecord{
		"short code": {Code: "233", Market: MarketListed, Price: 10},
		"alpha code": {Code: "23A0", Market: MarketListed, Price: 10},
		"bad market": {Code: "2330", Market: "TSE", Price: 10},
		"zero price": {Code: "2330", Market: MarketOTC},
		"neg volume": {Code: "2330", Market: MarketOTC, Price: 10, Volume: -1},
		"neg cap":    {Code: "2330", Market: MarketOTC, Price: 10, MarketCap: -1},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, r.Validate())
		})
	}
}

func TestDerivePreviousClose(t *testing.T) {
	assert.InDelta(t, 100.0, DerivePreviousClose(110, 10), 1e-9)
	assert.InDelta(t, 100.0, DerivePreviousClose(90, -10), 1e-9)
	assert.Equal(t, 0.0, DerivePreviousClose(10, -100))
	assert.InDelta(t, 10.0, ChangePercent(110, 100), 1e-9)
	assert.Equal(t, 0.0, ChangePercent(110, 0))
}

func TestStockRecord_Reprice(t *testing.T) {
	r := StockRecord{Code: "2330", Price: 100, PreviousClose: 100}
	r.Reprice(105, 100)
	assert.Equal(t, 105.0, r.Price)
	assert.InDelta(t, 5.0, r.ChangePct, 1e-9)

	open := 0.0
	r.OpenPrice = &open
	assert.False(t, r.HasOpen())
	open = 101
	assert.True(t, r.HasOpen())
}

func TestFilterCriteria(t *testing.T) {
	assert.NoError(t, DefaultCriteria().Validate())

	bad := []FilterCriteria{
		{MinPrice: 0, MaxPrice: 100},
		{MinPrice: 100, MaxPrice: 100},
		{MinPrice: 10, MaxPrice: 100, MinMarketCap: -1},
		{MinPrice: 10, MaxPrice: 100, MinVolumeLots: -1},
	}
	for _, c := range bad {
		err := c.Validate()
		assert.True(t, errors.Is(err, ErrInvalidCriteria), "%+v", c)
	}

	err := FilterCriteria{MinPrice: 100, MaxPrice: 50}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxPrice")
	assert.Contains(t, err.Error(), "gtfield=MinPrice")

	a := DefaultCriteria()
	b := a
	b.GapUpOnly = true
	assert.True(t, a.SameKey(b))
	b.MinVolumeLots++
	assert.False(t, a.SameKey(b))
	assert.Equal(t, 1000.0*LotSize, a.MinVolumeShares())
}

func TestSeries(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	s := Series{
		{Date: day(2), Open: 10, Close: 11},
		{Date: day(3)},
		{Date: day(4), Open: 12, High: 12},
		{Date: day(5), Open: 13, Close: 12.5},
	}

	assert.Len(t, s.Compact(), 3)
	valid := s.Valid()
	require.Len(t, valid, 2)
	assert.Equal(t, []float64{11, 12.5}, valid.Closes())

	last, ok := valid.Last()
	require.True(t, ok)
	assert.Equal(t, 13.0, last.BodyHigh())
	_, ok = Series{}.Last()
	assert.False(t, ok)
}

func TestNewCatalog(t *testing.T) {
	records := []StockRecord{
		{Code: "2330", Market: MarketListed, Price: 1000},
		{Code: "bad", Market: MarketListed, Price: 10},
		{Code: "6488", Market: MarketOTC, Price: 450},
	}
	c, dropped := NewCatalog("2026-03-02", records)
	assert.Len(t, dropped, 1)
	require.Len(t, c.Stocks, 2)

	copied := c.Records()
	copied[0].Price = 1
	assert.Equal(t, 1000.0, c.Stocks[0].Price)
}

func TestCatalogEntry_RoundTrip(t *testing.T) {
	open := 98.0
	r := StockRecord{Code: "2317", Name: "鸿海", Market: MarketListed, Price: 110, ChangePct: 10, Volume: 5, MarketCap: 7, OpenPrice: &open}
	got := NewCatalogEntry(r).ToRecord()

	assert.Equal(t, r.Code, got.Code)
	assert.Equal(t, r.Market, got.Market)
	assert.InDelta(t, 100.0, got.PreviousClose, 1e-9)
	require.NotNil(t, got.OpenPrice)
	assert.Equal(t, 98.0, *got.OpenPrice)

	// 已知昨收时原样保存，不再由四舍五入后的涨跌幅逆推
	var priced StockRecord
	priced.Code, priced.Market = "2330", MarketListed
	priced.Reprice(1085, 1070)
	entry := NewCatalogEntry(priced)
	assert.Equal(t, 1070.0, entry.PreviousClose)
	entry.ChangePct = 1.4
	back := entry.ToRecord()
	assert.Equal(t, 1070.0, back.PreviousClose)
	assert.InDelta(t, (1085.0-1070.0)/1070.0*100, back.ChangePct, 1e-9)
}

func TestPipelineSnapshot_TopRecommendations(t *testing.T) {
	p := &PipelineSnapshot{Recommendations: []RecommendationRecord{{Code: "1"}, {Code: "2"}, {Code: "3"}}}
	assert.Len(t, p.TopRecommendations(2), 2)
	assert.Len(t, p.TopRecommendations(0), 3)
	assert.Len(t, p.TopRecommendations(9), 3)
	assert.False(t, BenchmarkQuote{}.Available())
}
