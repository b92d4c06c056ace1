// pkg/model/catalog.go
package model

import (
	"time"
)

// CatalogEntry 股票目录数据表
type CatalogEntry struct {
	Code   string   `gorm:"type:varchar(4);primaryKey" json:"code"`
	Name   string   `gorm:"type:varchar(64);not null" json:"name"`
	Market string   `gorm:"type:varchar(10);not null;index" json:"market"`
	Price  float64  `gorm:"type:decimal(12,2);not null" json:"price"`
	Open   *float64 `gorm:"type:decimal(12,2)" json:"open,omitempty"`
	// PreviousClose 为 0 表示未知，读取时由现价与涨跌幅逆推
	PreviousClose float64   `gorm:"type:decimal(12,2);default:0" json:"previous_close"`
	ChangePct     float64   `gorm:"type:decimal(8,4);default:0" json:"change_pct"`
	Volume        int64     `gorm:"default:0" json:"volume"`
	MarketCap     float64   `gorm:"type:decimal(20,0);default:0" json:"market_cap"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `gorm:"index" json:"updated_at"`
}

// TableName 表名
func (CatalogEntry) TableName() string {
	return "stock_catalog"
}

// ToRecord 转换为管道使用的记录
func (c CatalogEntry) ToRecord() StockRecord {
	r := StockRecord{
		Code:      c.Code,
		Name:      c.Name,
		Market:    MarketSegment(c.Market),
		Price:     c.Price,
		ChangePct: c.ChangePct,
		Volume:    c.Volume,
		MarketCap: c.MarketCap,
		OpenPrice: c.Open,
	}
	if c.PreviousClose > 0 {
		r.Reprice(c.Price, c.PreviousClose)
	} else {
		r.PreviousClose = DerivePreviousClose(c.Price, c.ChangePct)
	}
	return r
}

// NewCatalogEntry 由记录生成数据表行
func NewCatalogEntry(r StockRecord) CatalogEntry {
	return CatalogEntry{
		Code:          r.Code,
		Name:          r.Name,
		Market:        string(r.Market),
		Price:         r.Price,
		Open:          r.OpenPrice,
		PreviousClose: r.PreviousClose,
		ChangePct:     r.ChangePct,
		Volume:        r.Volume,
		MarketCap:     r.MarketCap,
	}
}

// Catalog 股票目录快照
type Catalog struct {
	UpdateTime string        `json:"update_time"`
	Stocks     []StockRecord `json:"stocks"`
}

// NewCatalog 建立目录，未通过 Validate 的记录被剔除并回传原因
func NewCatalog(updateTime string, records []StockRecord) (*Catalog, []error) {
	var dropped []error
	stocks := make([]StockRecord, 0, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			dropped = append(dropped, err)
			continue
		}
		stocks = append(stocks, r)
	}
	return &Catalog{UpdateTime: updateTime, Stocks: stocks}, dropped
}

// Records 返回记录副本，调用方可以自由修改
func (c *Catalog) Records() []StockRecord {
	out := make([]StockRecord, len(c.Stocks))
	copy(out, c.Stocks)
	return out
}
