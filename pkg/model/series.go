package model

import "time"

// Bar 单日K线
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Empty 整根K线无任何价格数据
func (b Bar) Empty() bool {
	return b.Open <= 0 && b.High <= 0 && b.Low <= 0 && b.Close <= 0
}

// BodyHigh 实体高点 max(open, close)
func (b Bar) BodyHigh() float64 {
	if b.Open > b.Close {
		return b.Open
	}
	return b.Close
}

// Series 日K序列（旧→新），作为不可变值使用，方法均返回新切片
type Series []Bar

// Compact 去掉完全没有数据的K线
func (s Series) Compact() Series {
	out := make(Series, 0, len(s))
	for _, b := range s {
		if !b.Empty() {
			out = append(out, b)
		}
	}
	return out
}

// Valid 仅保留收盘价有效的K线
func (s Series) Valid() Series {
	out := make(Series, 0, len(s))
	for _, b := range s {
		if b.Close > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Closes 收盘价数组
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Last 最后一根K线
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}
