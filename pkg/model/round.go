package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 对外输出（API、推送）统一四舍五入到两位小数，NaN 与无穷输出 0
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
