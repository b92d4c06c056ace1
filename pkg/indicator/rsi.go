package indicator

import "math"

// RSI 相对强弱指标
//
// 对收盘价逐日差分，涨幅与跌幅分别取 period 日滚动简单平均，
// RSI = 100 - 100/(1 + avgGain/avgLoss)。avgLoss 为 0 时定义为 100。
// 第一个有效值出现在下标 period，之前为 NaN。
func RSI(closes []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	var sumGain, sumLoss float64
	for i := 1; i < len(closes); i++ {
		sumGain += gains[i]
		sumLoss += losses[i]
		if i > period {
			sumGain -= gains[i-period]
			sumLoss -= losses[i-period]
		}
		if i < period {
			continue
		}
		out[i] = rsiValue(sumGain/float64(period), sumLoss/float64(period))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	// 浮点累减可能留下极小的负残差
	if avgLoss <= 1e-12 {
		return 100
	}
	if avgGain < 0 {
		avgGain = 0
	}
	return 100 - 100/(1+avgGain/avgLoss)
}
