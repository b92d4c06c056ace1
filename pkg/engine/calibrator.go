package engine

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"StrengthRadar/pkg/collector"
	"StrengthRadar/pkg/model"
)

// CalibrationSessions 校准只需要最近两日
const CalibrationSessions = 2

// Calibrator 即时价格校准
//
// 对整个候选集只发出一次批次请求，使后续排名与评分使用同一时点的价格。
// 批次不设整体期限，单一代码的超时由行情源负责。
type Calibrator struct {
	source collector.QuoteSource
	logger arbor.ILogger
}

// NewCalibrator 创建校准器
func NewCalibrator(source collector.QuoteSource, logger arbor.ILogger) *Calibrator {
	return &Calibrator{source: source, logger: logger}
}

// Calibrate 原地更新 records 的价格、昨收、涨跌幅与成交量，回传更新笔数
//
// 批次整体失败时记录保持原值并回传错误；个别代码无数据时该笔不变。
func (c *Calibrator) Calibrate(ctx context.Context, records []model.StockRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	symbols := make([]string, len(records))
	for i, r := range records {
		symbols[i] = collector.Symbol(r.Code, r.Market)
	}

	batch, err := c.source.GetRecentSeriesBatch(ctx, symbols, CalibrationSessions)
	if err != nil && len(batch) == 0 {
		return 0, fmt.Errorf("即时价格校准失败: %w", err)
	}

	updated := 0
	for i := range records {
		series, ok := batch[symbols[i]]
		if !ok {
			continue
		}
		if applyCalibration(&records[i], series) {
			updated++
		}
	}

	if c.logger != nil {
		c.logger.Debug().Int("candidates", len(records)).Int("updated", updated).Msg("即时价格校准完成")
	}
	return updated, nil
}

// applyCalibration 以最新收盘为现价，前一日收盘为昨收；只有一日数据时由旧值逆推昨收
func applyCalibration(r *model.StockRecord, series model.Series) bool {
	valid := series.Compact().Valid()
	latest, ok := valid.Last()
	if !ok {
		return false
	}

	var prev float64
	if len(valid) >= 2 {
		prev = valid[len(valid)-2].Close
	} else {
		prev = model.DerivePreviousClose(r.Price, r.ChangePct)
	}

	r.Reprice(latest.Close, prev)
	if latest.Volume > 0 {
		r.Volume = latest.Volume
	}
	return true
}
