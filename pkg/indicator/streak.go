package indicator

import (
	"fmt"
	"time"

	"StrengthRadar/pkg/model"
)

// BodyHighEpsilon 比较实体高点时的浮点容差
const BodyHighEpsilon = 0.001

// StrongStreak 达到此天数使用强势标记
const StrongStreak = 3

// HighDaysResult 实体高点守住天数
type HighDaysResult struct {
	Strong        bool
	Count         int
	Label         string
	ReferenceDate time.Time
}

// HighDays 计算参考价连续守住前几日实体高点 max(open, close) 的天数
//
// 参考价为最新收盘价；最新收盘无效且至少有 3 根K线时改用前一日收盘。
// 由参考日往前逐日比较，遇到第一根不满足或开收盘无效的K线即停止。
func HighDays(series model.Series) HighDaysResult {
	if len(series) < 2 {
		return HighDaysResult{}
	}

	ref := len(series) - 1
	if series[ref].Close <= 0 {
		if len(series) < 3 {
			return HighDaysResult{}
		}
		ref--
		if series[ref].Close <= 0 {
			return HighDaysResult{}
		}
	}
	price := series[ref].Close

	count := 0
	for i := ref - 1; i >= 0; i-- {
		bar := series[i]
		if bar.Open <= 0 || bar.Close <= 0 {
			break
		}
		if price < bar.BodyHigh()-BodyHighEpsilon {
			break
		}
		count++
	}

	return HighDaysResult{
		Strong:        count >= 1,
		Count:         count,
		Label:         StreakLabel(count, series[ref].Date),
		ReferenceDate: series[ref].Date,
	}
}

// StreakLabel 强势天数说明文字
func StreakLabel(count int, ref time.Time) string {
	if count <= 0 {
		return ""
	}
	icon := "📈"
	if count >= StrongStreak {
		icon = "🔥"
	}
	if ref.IsZero() {
		return fmt.Sprintf("%s 连续守住 %d 日实体高点", icon, count)
	}
	return fmt.Sprintf("%s 连续守住 %d 日实体高点 (基准:%s)", icon, count, ref.Format("2006-01-02"))
}
