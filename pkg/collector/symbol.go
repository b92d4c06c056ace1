package collector

import (
	"strings"

	"StrengthRadar/pkg/model"
)

// 大盘指数代码
const (
	SymbolTAIEX = "^TWII"  // 加权指数
	SymbolTPEx  = "^TWOII" // 柜买指数
)

// BenchmarkSymbol 市场别对应的指数代码
func BenchmarkSymbol(m model.MarketSegment) string {
	if m == model.MarketOTC {
		return SymbolTPEx
	}
	return SymbolTAIEX
}

// Symbol 股票代码转换为行情代码: 上市 .TW，上柜 .TWO
func Symbol(code string, m model.MarketSegment) string {
	if m == model.MarketOTC {
		return code + ".TWO"
	}
	return code + ".TW"
}

// ParseSymbol 行情代码还原为股票代码与市场别
func ParseSymbol(symbol string) (string, model.MarketSegment, bool) {
	switch {
	case strings.HasSuffix(symbol, ".TWO"):
		return strings.TrimSuffix(symbol, ".TWO"), model.MarketOTC, true
	case strings.HasSuffix(symbol, ".TW"):
		return strings.TrimSuffix(symbol, ".TW"), model.MarketListed, true
	default:
		return "", "", false
	}
}
