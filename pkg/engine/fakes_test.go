package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"StrengthRadar/pkg/model"
)

var errUpstream = errors.New("upstream unavailable")

// fakeSource 以固定序列回应，记录每次批次请求
type fakeSource struct {
	mu       sync.Mutex
	series   map[string]model.Series
	failing  map[string]bool
	failAll  bool
	batches  [][]string
	sessions []int
	delay    time.Duration
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		series:  make(map[string]model.Series),
		failing: make(map[string]bool),
	}
}

func (f *fakeSource) set(symbol string, s model.Series) *fakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series[symbol] = s
	return f
}

func (f *fakeSource) GetRecentSeries(ctx context.Context, symbol string, sessions int) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll || f.failing[symbol] {
		return nil, errUpstream
	}
	s, ok := f.series[symbol]
	if !ok {
		return model.Series{}, nil
	}
	return tailSeries(s, sessions), nil
}

func (f *fakeSource) GetRecentSeriesBatch(ctx context.Context, symbols []string, sessions int) (map[string]model.Series, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]string(nil), symbols...))
	f.sessions = append(f.sessions, sessions)
	if err := ctx.Err(); err != nil {
		return map[string]model.Series{}, err
	}
	if f.failAll {
		return map[string]model.Series{}, errUpstream
	}
	out := make(map[string]model.Series)
	for _, sym := range symbols {
		if f.failing[sym] {
			continue
		}
		if s, ok := f.series[sym]; ok {
			out[sym] = tailSeries(s, sessions)
		}
	}
	return out, nil
}

func (f *fakeSource) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func tailSeries(s model.Series, n int) model.Series {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// fakeCatalog 内存目录
type fakeCatalog struct {
	mu      sync.Mutex
	catalog *model.Catalog
	err     error
	loads   int
	onLoad  func()
}

func (f *fakeCatalog) LoadCatalog(ctx context.Context) (*model.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.onLoad != nil {
		f.onLoad()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.catalog, nil
}

func day(i int) time.Time {
	return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// risingSeries n 根收盘由 start 每日加 step 的阳线
func risingSeries(n int, start, step float64) model.Series {
	s := make(model.Series, n)
	for i := range s {
		c := start + float64(i)*step
		s[i] = model.Bar{Date: day(i), Open: c - step/2, High: c, Low: c - step, Close: c, Volume: 5_000_000}
	}
	return s
}

// indexSeries 前一日 prev，最新 last
func indexSeries(prev, last float64) model.Series {
	return model.Series{
		{Date: day(0), Open: prev, High: prev, Low: prev, Close: prev},
		{Date: day(1), Open: last, High: last, Low: last, Close: last},
	}
}

func record(code string, market model.MarketSegment, price, prev float64, volume int64, mcap float64) model.StockRecord {
	r := model.StockRecord{Code: code, Name: "股票" + code, Market: market, Volume: volume, MarketCap: mcap}
	r.Reprice(price, prev)
	return r
}

func ptr(v float64) *float64 { return &v }
