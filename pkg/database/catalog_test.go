package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"StrengthRadar/pkg/logger"
	"StrengthRadar/pkg/model"
	"StrengthRadar/pkg/repository"
)

// 需要 STRENGTHRADAR_TEST_DSN 指向可写入的 Postgres
func openTestDB(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("STRENGTHRADAR_TEST_DSN")
	if dsn == "" {
		t.Skip("STRENGTHRADAR_TEST_DSN 未设置")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(&model.CatalogEntry{}))
	pg := NewPostgresFromDB(db, nil)
	t.Cleanup(func() {
		_ = db.Migrator().DropTable(&model.CatalogEntry{})
		_ = pg.Close()
	})
	return pg
}

func TestCatalogDB_MissingTable(t *testing.T) {
	pg := openTestDB(t)

	_, err := pg.Catalog().LoadCatalog(context.Background())
	assert.ErrorIs(t, err, repository.ErrCatalogNotFound)
}

func TestCatalogDB_SaveAndLoad(t *testing.T) {
	pg := openTestDB(t)
	store := pg.Catalog()
	ctx := context.Background()
	require.NoError(t, store.AutoMigrate())

	_, err := store.LoadCatalog(ctx)
	assert.ErrorIs(t, err, repository.ErrCatalogNotFound)

	open := 1040.0
	records := []model.StockRecord{
		{Code: "2330", Name: "台积电", Market: model.MarketListed, Price: 1050, ChangePct: 1.45, Volume: 100, MarketCap: 1, OpenPrice: &open},
		{Code: "6488", Name: "环球晶", Market: model.MarketOTC, Price: 465, ChangePct: 1.97, Volume: 200},
	}
	require.NoError(t, store.SaveBatch(ctx, records))

	// 同代码再次写入为更新
	records[0].Price = 1060
	require.NoError(t, store.SaveBatch(ctx, records[:1]))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	catalog, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog.Stocks, 2)
	assert.Equal(t, "2330", catalog.Stocks[0].Code)
	assert.Equal(t, 1060.0, catalog.Stocks[0].Price)
	require.NotNil(t, catalog.Stocks[0].OpenPrice)
	assert.Nil(t, catalog.Stocks[1].OpenPrice)
	assert.NotEmpty(t, catalog.UpdateTime)
}

func TestCatalogFromEntries(t *testing.T) {
	early := time.Date(2024, 5, 8, 13, 30, 0, 0, time.UTC)
	late := early.Add(5 * time.Minute)
	entries := []model.CatalogEntry{
		{Code: "2330", Name: "台积电", Market: "LISTED", Price: 1085, PreviousClose: 1070, ChangePct: 1.4, UpdatedAt: early},
		{Code: "6488", Name: "环球晶", Market: "OTC", Price: 465, ChangePct: 1.97, UpdatedAt: late},
		{Code: "23A0", Name: "坏代码", Market: "LISTED", Price: 10, UpdatedAt: early},
		{Code: "1101", Name: "台泥", Market: "EMERGING", Price: 33, UpdatedAt: early},
	}

	catalog := catalogFromEntries(entries, logger.GetLogger())
	require.Len(t, catalog.Stocks, 2, "invalid rows dropped")
	assert.Equal(t, "2024-05-08 13:35:00", catalog.UpdateTime)

	tsmc := catalog.Stocks[0]
	assert.Equal(t, 1070.0, tsmc.PreviousClose)
	assert.InDelta(t, (1085.0-1070.0)/1070.0*100, tsmc.ChangePct, 1e-9)
	assert.InDelta(t, 465/1.0197, catalog.Stocks[1].PreviousClose, 1e-9)

	assert.Len(t, catalogFromEntries(entries[2:], nil).Stocks, 0)
}
