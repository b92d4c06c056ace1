package model

import (
	"fmt"
)

// MarketSegment 市场别
type MarketSegment string

const (
	MarketListed MarketSegment = "LISTED" // 上市
	MarketOTC    MarketSegment = "OTC"    // 上柜
)

// Segments 返回全部市场别（固定顺序）
func Segments() []MarketSegment {
	return []MarketSegment{MarketListed, MarketOTC}
}

// Valid 是否为已知市场别
func (m MarketSegment) Valid() bool {
	return m == MarketListed || m == MarketOTC
}

// StockRecord 股票目录条目合并最新行情
type StockRecord struct {
	Code          string        `json:"code"`
	Name          string        `json:"name"`
	Market        MarketSegment `json:"market"`
	Price         float64       `json:"price"`
	PreviousClose float64       `json:"previous_close"`
	ChangePct     float64       `json:"change_pct"`
	Volume        int64         `json:"volume"`     // 股
	MarketCap     float64       `json:"market_cap"` // 元
	OpenPrice     *float64      `json:"open,omitempty"`
}

// Validate 检查目录记录的必要字段
func (s StockRecord) Validate() error {
	if len(s.Code) != 4 {
		return fmt.Errorf("股票代码必须为4位: %q", s.Code)
	}
	for _, r := range s.Code {
		if r < '0' || r > '9' {
			return fmt.Errorf("股票代码必须为数字: %q", s.Code)
		}
	}
	if !s.Market.Valid() {
		return fmt.Errorf("未知市场别: %q (%s)", s.Market, s.Code)
	}
	if s.Price <= 0 {
		return fmt.Errorf("价格必须大于0: %s", s.Code)
	}
	if s.Volume < 0 || s.MarketCap < 0 {
		return fmt.Errorf("成交量与市值不能为负: %s", s.Code)
	}
	return nil
}

// HasOpen 是否带开盘价
func (s StockRecord) HasOpen() bool {
	return s.OpenPrice != nil && *s.OpenPrice > 0
}

// Reprice 同时更新现价与昨收，并重新计算涨跌幅
func (s *StockRecord) Reprice(price, previousClose float64) {
	s.Price = price
	s.PreviousClose = previousClose
	s.ChangePct = ChangePercent(price, previousClose)
}

// DerivePreviousClose 由现价与涨跌幅逆推昨收: price / (1 + change_pct/100)
func DerivePreviousClose(price, changePct float64) float64 {
	d := 1 + changePct/100
	if d <= 0 {
		return 0
	}
	return price / d
}

// ChangePercent 计算涨跌幅(%)，昨收无效时为0
func ChangePercent(price, previousClose float64) float64 {
	if previousClose <= 0 {
		return 0
	}
	return (price - previousClose) / previousClose * 100
}
