package database

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"StrengthRadar/pkg/config"
)

// Postgres 数据库连接
type Postgres struct {
	db     *gorm.DB
	logger arbor.ILogger
}

// NewPostgres 创建新的Postgres连接
func NewPostgres(cfg *config.Config, log arbor.ILogger) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库连接池失败: %w", err)
	}

	// 设置连接池参数
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("测试数据库连接失败: %w", err)
	}

	return &Postgres{db: db, logger: log}, nil
}

// NewPostgresFromDB 使用已建立的 gorm 连接
func NewPostgresFromDB(db *gorm.DB, log arbor.ILogger) *Postgres {
	return &Postgres{db: db, logger: log}
}

// Close 关闭数据库连接
func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping 健康检查
func (p *Postgres) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Catalog 股票目录数据表
func (p *Postgres) Catalog() *CatalogDB {
	return &CatalogDB{db: p.db, logger: p.logger}
}
