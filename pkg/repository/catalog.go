package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/tidwall/gjson"

	"StrengthRadar/pkg/model"
)

// ErrCatalogNotFound 目录文件或数据表尚未建立
var ErrCatalogNotFound = errors.New("股票目录不存在")

// CatalogReader 股票目录读取接口
type CatalogReader interface {
	LoadCatalog(ctx context.Context) (*model.Catalog, error)
}

// FileCatalog 由批次任务产生的 JSON 目录文件
//
// 文件格式: {"update_time": "...", "stocks": [{"code","name","price","open",
// "change_pct","volume","market_cap","market"}]}。文件修改时间不变时沿用上次解析结果。
type FileCatalog struct {
	path   string
	logger arbor.ILogger

	mutex   sync.RWMutex
	modTime time.Time
	cached  *model.Catalog
}

// NewFileCatalog 创建文件目录读取器
func NewFileCatalog(path string, logger arbor.ILogger) *FileCatalog {
	return &FileCatalog{path: path, logger: logger}
}

// LoadCatalog 读取目录，文件不存在时返回 ErrCatalogNotFound
func (f *FileCatalog) LoadCatalog(ctx context.Context) (*model.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, f.path)
		}
		return nil, fmt.Errorf("读取目录文件失败: %w", err)
	}

	f.mutex.RLock()
	if f.cached != nil && info.ModTime().Equal(f.modTime) {
		c := f.cached
		f.mutex.RUnlock()
		return c, nil
	}
	f.mutex.RUnlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("读取目录文件失败: %w", err)
	}
	catalog, err := ParseCatalog(data, f.logger)
	if err != nil {
		return nil, err
	}

	f.mutex.Lock()
	f.cached = catalog
	f.modTime = info.ModTime()
	f.mutex.Unlock()

	if f.logger != nil {
		f.logger.Info().Str("path", f.path).Int("stocks", len(catalog.Stocks)).Str("update_time", catalog.UpdateTime).Msg("股票目录已载入")
	}
	return catalog, nil
}

// ParseCatalog 解析目录 JSON，不合法的记录被剔除并记录警告
func ParseCatalog(data []byte, logger arbor.ILogger) (*model.Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("解析目录文件失败: 非法JSON")
	}
	root := gjson.ParseBytes(data)
	stocks := root.Get("stocks")
	if !stocks.IsArray() {
		return nil, fmt.Errorf("解析目录文件失败: 缺少 stocks 数组")
	}

	items := stocks.Array()
	records := make([]model.StockRecord, 0, len(items))
	for _, item := range items {
		records = append(records, parseRecord(item))
	}

	catalog, dropped := model.NewCatalog(root.Get("update_time").String(), records)
	if logger != nil {
		for _, err := range dropped {
			logger.Warn().Err(err).Msg("剔除不合法的目录记录")
		}
	}
	return catalog, nil
}

func parseRecord(item gjson.Result) model.StockRecord {
	r := model.StockRecord{
		Code:      item.Get("code").String(),
		Name:      item.Get("name").String(),
		Market:    model.MarketSegment(item.Get("market").String()),
		Price:     item.Get("price").Float(),
		ChangePct: item.Get("change_pct").Float(),
		Volume:    item.Get("volume").Int(),
		MarketCap: item.Get("market_cap").Float(),
	}
	if open := item.Get("open"); open.Exists() && open.Type == gjson.Number {
		v := open.Float()
		r.OpenPrice = &v
	}
	if prev := item.Get("previous_close").Float(); prev > 0 {
		r.Reprice(r.Price, prev)
	} else {
		r.PreviousClose = model.DerivePreviousClose(r.Price, r.ChangePct)
	}
	return r
}
