package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"StrengthRadar/pkg/model"
)

func randomCatalog(rng *rand.Rand, n int) []model.StockRecord {
	out := make([]model.StockRecord, n)
	for i := range out {
		market := model.MarketListed
		if rng.Intn(2) == 0 {
			market = model.MarketOTC
		}
		price := 5 + rng.Float64()*1500
		r := record(
			string(rune('1'+i%9))+"00"+string(rune('0'+i%10)),
			market,
			price,
			price*(0.9+rng.Float64()*0.2),
			rng.Int63n(50_000_000),
			rng.Float64()*1e12,
		)
		if rng.Intn(3) > 0 {
			r.OpenPrice = ptr(r.PreviousClose * (0.95 + rng.Float64()*0.1))
		}
		out[i] = r
	}
	return out
}

func satisfies(r model.StockRecord, c model.FilterCriteria) bool {
	if r.Price < c.MinPrice || r.Price > c.MaxPrice {
		return false
	}
	if r.MarketCap < c.MinMarketCap || float64(r.Volume) < c.MinVolumeLots*model.LotSize {
		return false
	}
	return !c.GapUpOnly || IsGapUp(r)
}

func TestApplyBaseFilter_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		catalog := randomCatalog(rng, 60)
		c := model.FilterCriteria{
			MinPrice:      10 + rng.Float64()*100,
			MaxPrice:      200 + rng.Float64()*1000,
			MinMarketCap:  rng.Float64() * 5e11,
			MinVolumeLots: rng.Float64() * 20_000,
			GapUpOnly:     rng.Intn(2) == 0,
		}

		out := ApplyBaseFilter(catalog, c)
		for _, r := range out {
			assert.True(t, satisfies(r, c), "record %s violates criteria", r.Code)
		}

		tighter := []model.FilterCriteria{c, c, c, c, c}
		tighter[0].MinPrice += 50
		tighter[1].MaxPrice -= 100
		tighter[2].MinMarketCap += 1e11
		tighter[3].MinVolumeLots += 5000
		tighter[4].GapUpOnly = true
		for _, tc := range tighter {
			assert.LessOrEqual(t, len(ApplyBaseFilter(catalog, tc)), len(out))
		}
	}
}

func TestApplyBaseFilter_KeepsCatalogOrderAndInput(t *testing.T) {
	catalog := []model.StockRecord{
		record("2330", model.MarketListed, 600, 590, 30_000_000, 5e13),
		record("1101", model.MarketListed, 5, 5, 30_000_000, 5e11),
		record("3443", model.MarketOTC, 1000, 1010, 500_000, 1e11),
	}
	before := append([]model.StockRecord(nil), catalog...)

	out := ApplyBaseFilter(catalog, model.FilterCriteria{MinPrice: 50, MaxPrice: 2000, MinMarketCap: 1e10, MinVolumeLots: 100})
	assert.Equal(t, []string{"2330", "3443"}, []string{out[0].Code, out[1].Code})
	assert.Equal(t, before, catalog)

	// 边界值包含在内
	edge := ApplyBaseFilter(catalog, model.FilterCriteria{MinPrice: 600, MaxPrice: 1000, MinVolumeLots: 500})
	assert.Len(t, edge, 2)
}

func TestIsGapUp(t *testing.T) {
	r := record("2330", model.MarketListed, 600, 590, 1, 1)
	assert.False(t, IsGapUp(r), "missing open never matches")

	r.OpenPrice = ptr(595)
	assert.True(t, IsGapUp(r))

	r.OpenPrice = ptr(590)
	assert.False(t, IsGapUp(r), "open equal to previous close is not a gap")

	r.OpenPrice = ptr(0)
	assert.False(t, IsGapUp(r))

	filtered := ApplyBaseFilter([]model.StockRecord{r}, model.FilterCriteria{MinPrice: 1, MaxPrice: 1000, GapUpOnly: true})
	assert.Empty(t, filtered)
}
