package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"StrengthRadar/pkg/model"
)

const (
	// DefaultWorkers 批次抓取默认并发数
	DefaultWorkers = 16
	// DefaultCallTimeout 单一代码抓取超时
	DefaultCallTimeout = 15 * time.Second
)

// YahooAdapter 以 Yahoo 图表接口实现 QuoteSource
//
// 图表接口一次只接受一个代码，批次请求在内部以有界并发展开；
// 单一代码失败或超时只代表该代码无数据。
type YahooAdapter struct {
	client      *YahooClient
	logger      arbor.ILogger
	workers     int
	callTimeout time.Duration
}

// NewYahooAdapter 创建Yahoo适配器
func NewYahooAdapter(client *YahooClient, logger arbor.ILogger, workers int, callTimeout time.Duration) *YahooAdapter {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &YahooAdapter{
		client:      client,
		logger:      logger,
		workers:     workers,
		callTimeout: callTimeout,
	}
}

// GetRecentSeries 获取单一代码最近 sessions 个交易日
func (y *YahooAdapter) GetRecentSeries(ctx context.Context, symbol string, sessions int) (model.Series, error) {
	if sessions <= 0 {
		return nil, fmt.Errorf("交易日数必须大于0: %d", sessions)
	}

	callCtx, cancel := context.WithTimeout(ctx, y.callTimeout)
	defer cancel()

	series, err := y.client.FetchChart(callCtx, symbol, calendarDays(sessions))
	if err != nil {
		return nil, fmt.Errorf("获取 %s 行情失败: %w", symbol, err)
	}
	return tail(series, sessions), nil
}

// GetRecentSeriesBatch 批次获取，失败的代码不出现在结果中
func (y *YahooAdapter) GetRecentSeriesBatch(ctx context.Context, symbols []string, sessions int) (map[string]model.Series, error) {
	result := make(map[string]model.Series, len(symbols))
	if len(symbols) == 0 {
		return result, nil
	}

	var (
		mu      sync.Mutex
		lastErr error
		failed  int
	)

	g := new(errgroup.Group)
	g.SetLimit(y.workers)
	for _, symbol := range symbols {
		g.Go(func() error {
			series, err := y.GetRecentSeries(ctx, symbol, sessions)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				lastErr = err
				if y.logger != nil {
					y.logger.Debug().Str("symbol", symbol).Err(err).Msg("行情抓取失败")
				}
				return nil
			}
			if len(series) > 0 {
				result[symbol] = series
			}
			return nil
		})
	}
	_ = g.Wait()

	if failed == len(symbols) {
		return result, fmt.Errorf("批次行情全部失败 (%d): %w", failed, lastErr)
	}
	if failed > 0 && y.logger != nil {
		y.logger.Warn().Int("failed", failed).Int("total", len(symbols)).Msg("部分代码行情抓取失败")
	}
	return result, nil
}

// calendarDays 交易日换算为请求的日历日范围（含周末与假日余量）
func calendarDays(sessions int) int {
	return sessions*3/2 + 5
}

func tail(s model.Series, n int) model.Series {
	if len(s) <= n {
		return s
	}
	out := make(model.Series, n)
	copy(out, s[len(s)-n:])
	return out
}
