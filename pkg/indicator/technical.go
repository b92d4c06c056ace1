package indicator

import "StrengthRadar/pkg/model"

const (
	// MAShortPeriod 短均线
	MAShortPeriod = 5
	// MALongPeriod 长均线
	MALongPeriod = 20
	// RSIPeriod RSI 周期
	RSIPeriod = 14
)

// Compute 由日K序列导出技术指标快照，序列不足时对应值为 NaN
func Compute(series model.Series) model.TechnicalSnapshot {
	valid := series.Valid()
	closes := valid.Closes()

	snap := model.TechnicalSnapshot{
		Close:    Last(closes),
		MAShort:  Last(SMA(closes, MAShortPeriod)),
		MALong:   Last(SMA(closes, MALongPeriod)),
		RSI:      Last(RSI(closes, RSIPeriod)),
		Sessions: len(valid),
	}
	if bar, ok := valid.Last(); ok {
		snap.ReferenceDate = bar.Date
	}
	return snap
}
