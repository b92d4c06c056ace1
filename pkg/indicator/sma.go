// Package indicator 技术指标，全部为纯函数：输入不被修改，返回新切片
package indicator

import "math"

// SMA 简单移动平均，与输入等长，暖机期为 NaN
func SMA(x []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i >= period {
			sum -= x[i-period]
		}
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}

// Last 返回最后一个值，空切片返回 NaN
func Last(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return x[len(x)-1]
}
