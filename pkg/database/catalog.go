package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ternarybob/arbor"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"StrengthRadar/pkg/model"
	"StrengthRadar/pkg/repository"
)

// undefinedTable Postgres 错误码: 数据表不存在
const undefinedTable = "42P01"

// CatalogDB 股票目录数据表操作，实现 repository.CatalogReader
type CatalogDB struct {
	db     *gorm.DB
	logger arbor.ILogger
}

var _ repository.CatalogReader = (*CatalogDB)(nil)

// AutoMigrate 建立或更新数据表
func (c *CatalogDB) AutoMigrate() error {
	if err := c.db.AutoMigrate(&model.CatalogEntry{}); err != nil {
		return fmt.Errorf("迁移目录数据表失败: %w", err)
	}
	return nil
}

// SaveBatch 按代码 upsert 目录记录
func (c *CatalogDB) SaveBatch(ctx context.Context, records []model.StockRecord) error {
	if len(records) == 0 {
		return nil
	}
	entries := make([]model.CatalogEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, model.NewCatalogEntry(r))
	}

	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "market", "price", "open", "previous_close", "change_pct", "volume", "market_cap", "updated_at"}),
		}).
		CreateInBatches(entries, 500).Error
	if err != nil {
		return fmt.Errorf("保存目录记录失败: %w", err)
	}
	return nil
}

// LoadCatalog 读取全部目录记录，数据表不存在或为空时返回 ErrCatalogNotFound
func (c *CatalogDB) LoadCatalog(ctx context.Context) (*model.Catalog, error) {
	var entries []model.CatalogEntry
	err := c.db.WithContext(ctx).Order("code").Find(&entries).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
			return nil, fmt.Errorf("%w: 数据表 %s", repository.ErrCatalogNotFound, model.CatalogEntry{}.TableName())
		}
		return nil, fmt.Errorf("查询目录记录失败: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: 数据表为空", repository.ErrCatalogNotFound)
	}

	return catalogFromEntries(entries, c.logger), nil
}

// catalogFromEntries 转换数据表行，剔除不合法的记录并逐笔记录原因
func catalogFromEntries(entries []model.CatalogEntry, logger arbor.ILogger) *model.Catalog {
	var updated time.Time
	records := make([]model.StockRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.ToRecord())
		if e.UpdatedAt.After(updated) {
			updated = e.UpdatedAt
		}
	}

	catalog, dropped := model.NewCatalog(updated.Format("2006-01-02 15:04:05"), records)
	if logger != nil {
		for _, err := range dropped {
			logger.Warn().Err(err).Msg("剔除不合法的目录记录")
		}
		if len(dropped) > 0 {
			logger.Warn().Int("dropped", len(dropped)).Int("kept", len(catalog.Stocks)).Msg("数据库目录含不合法记录")
		}
	}
	return catalog
}

// Count 目录记录数
func (c *CatalogDB) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.WithContext(ctx).Model(&model.CatalogEntry{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("统计目录记录失败: %w", err)
	}
	return n, nil
}
