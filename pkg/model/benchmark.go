package model

// BenchmarkQuote 大盘指数快照，抓取后不可变
type BenchmarkQuote struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Value     float64 `json:"value"`
	ChangePct float64 `json:"change_pct"`
}

// Available 零值指数表示抓取失败，比较退化为绝对涨幅
func (b BenchmarkQuote) Available() bool {
	return b.Value > 0
}
