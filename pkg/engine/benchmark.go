package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"StrengthRadar/pkg/collector"
	"StrengthRadar/pkg/model"
)

// BenchmarkSessions 指数抓取的交易日数
const BenchmarkSessions = 5

// benchmarkNames 指数名称
var benchmarkNames = map[model.MarketSegment]string{
	model.MarketListed: "加权指数",
	model.MarketOTC:    "柜买指数",
}

// BenchmarkTracker 大盘指数追踪
type BenchmarkTracker struct {
	source  collector.QuoteSource
	logger  arbor.ILogger
	timeout time.Duration
}

// NewBenchmarkTracker 创建指数追踪器
func NewBenchmarkTracker(source collector.QuoteSource, logger arbor.ILogger, timeout time.Duration) *BenchmarkTracker {
	return &BenchmarkTracker{source: source, logger: logger, timeout: timeout}
}

// Fetch 抓取单一市场的指数，失败时返回零值报价与错误
func (b *BenchmarkTracker) Fetch(ctx context.Context, segment model.MarketSegment) (model.BenchmarkQuote, error) {
	name := benchmarkNames[segment]
	symbol := collector.BenchmarkSymbol(segment)
	zero := model.BenchmarkQuote{Name: name, Symbol: symbol}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	series, err := b.source.GetRecentSeries(ctx, symbol, BenchmarkSessions)
	if err != nil {
		return zero, fmt.Errorf("获取%s失败: %w", name, err)
	}
	quote, err := QuoteFromSeries(name, symbol, series)
	if err != nil {
		return zero, err
	}
	return quote, nil
}

// FetchAll 并发抓取两个市场的指数，失败的市场以零值报价代替并回传警告
func (b *BenchmarkTracker) FetchAll(ctx context.Context) (map[model.MarketSegment]model.BenchmarkQuote, []string) {
	var (
		mu     sync.Mutex
		quotes = make(map[model.MarketSegment]model.BenchmarkQuote, 2)
		failed = make(map[model.MarketSegment]error, 2)
	)

	g := new(errgroup.Group)
	for _, segment := range model.Segments() {
		g.Go(func() error {
			quote, err := b.Fetch(ctx, segment)
			mu.Lock()
			defer mu.Unlock()
			quotes[segment] = quote
			if err != nil {
				failed[segment] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	var warnings []string
	for _, segment := range model.Segments() {
		err, ok := failed[segment]
		if !ok {
			continue
		}
		quote := quotes[segment]
		warnings = append(warnings, fmt.Sprintf("%s无法取得，比较退化为绝对涨幅", quote.Name))
		if b.logger != nil {
			b.logger.Warn().Str("symbol", quote.Symbol).Err(err).Msg("指数抓取失败")
		}
	}
	return quotes, warnings
}

// QuoteFromSeries 最新收盘为指数值，涨跌幅取最近两日收盘
func QuoteFromSeries(name, symbol string, series model.Series) (model.BenchmarkQuote, error) {
	valid := series.Valid()
	if len(valid) == 0 {
		return model.BenchmarkQuote{Name: name, Symbol: symbol}, fmt.Errorf("%s无行情数据", name)
	}

	latest := valid[len(valid)-1].Close
	quote := model.BenchmarkQuote{Name: name, Symbol: symbol, Value: latest}
	if len(valid) >= 2 {
		quote.ChangePct = model.ChangePercent(latest, valid[len(valid)-2].Close)
	}
	return quote, nil
}
