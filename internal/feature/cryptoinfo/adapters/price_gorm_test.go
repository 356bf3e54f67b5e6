package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"crypto_backend/internal/feature/cryptoinfo/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&PricePointModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

// seedPrice creates a test price point in the database.
func seedPrice(t *testing.T, db *gorm.DB, symbol string, ts time.Time, price float64) *PricePointModel {
	t.Helper()

	p := &PricePointModel{Symbol: symbol, Timestamp: ts, Price: price}
	err := db.Create(p).Error
	require.NoError(t, err, "failed to seed price point")

	return p
}

func TestNewPriceRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewPriceRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestPriceGorm_MaxMinPrice(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewPriceRepository(db)

	jan := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPrice(t, db, "BTC", jan, 46813.21)
	seedPrice(t, db, "BTC", jan.Add(24*time.Hour), 33276.59)
	seedPrice(t, db, "BTC", jan.Add(48*time.Hour), 47722.66)
	seedPrice(t, db, "ETH", jan, 3000.00) // 他シンボルは集約に混ざらない

	t.Run("whole history when window is nil", func(t *testing.T) {
		max, err := repo.MaxPrice(ctx, "BTC", nil)
		require.NoError(t, err)
		require.NotNil(t, max)
		assert.Equal(t, 47722.66, *max)

		min, err := repo.MinPrice(ctx, "BTC", nil)
		require.NoError(t, err)
		require.NotNil(t, min)
		assert.Equal(t, 33276.59, *min)
	})

	t.Run("window bounds are inclusive on both ends", func(t *testing.T) {
		w := entity.Window{From: jan, To: jan.Add(24 * time.Hour)}
		max, err := repo.MaxPrice(ctx, "BTC", &w)
		require.NoError(t, err)
		require.NotNil(t, max)
		assert.Equal(t, 46813.21, *max)

		min, err := repo.MinPrice(ctx, "BTC", &w)
		require.NoError(t, err)
		require.NotNil(t, min)
		assert.Equal(t, 33276.59, *min)
	})

	t.Run("nil when no rows match", func(t *testing.T) {
		max, err := repo.MaxPrice(ctx, "ADA", nil)
		require.NoError(t, err)
		assert.Nil(t, max)

		w := entity.Window{From: jan.Add(-48 * time.Hour), To: jan.Add(-24 * time.Hour)}
		min, err := repo.MinPrice(ctx, "BTC", &w)
		require.NoError(t, err)
		assert.Nil(t, min)
	})
}

func TestPriceGorm_EarliestLatestPrice(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewPriceRepository(db)

	jan := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPrice(t, db, "BTC", jan.Add(48*time.Hour), 38415.79)
	seedPrice(t, db, "BTC", jan, 46813.21)
	seedPrice(t, db, "BTC", jan.Add(24*time.Hour), 40000.00)

	window := entity.Window{From: jan, To: jan.Add(72 * time.Hour)}

	t.Run("earliest and latest by timestamp", func(t *testing.T) {
		oldest, err := repo.EarliestPrice(ctx, "BTC", window)
		require.NoError(t, err)
		require.NotNil(t, oldest)
		assert.Equal(t, 46813.21, *oldest)

		newest, err := repo.LatestPrice(ctx, "BTC", window)
		require.NoError(t, err)
		require.NotNil(t, newest)
		assert.Equal(t, 38415.79, *newest)
	})

	t.Run("nil outside the window", func(t *testing.T) {
		w := entity.Window{From: jan.Add(96 * time.Hour), To: jan.Add(120 * time.Hour)}
		oldest, err := repo.EarliestPrice(ctx, "BTC", w)
		require.NoError(t, err)
		assert.Nil(t, oldest)
	})

	t.Run("equal timestamps break ties by insert order", func(t *testing.T) {
		ts := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
		seedPrice(t, db, "XRP", ts, 0.50)
		seedPrice(t, db, "XRP", ts, 0.75)

		w := entity.Window{From: ts, To: ts}
		oldest, err := repo.EarliestPrice(ctx, "XRP", w)
		require.NoError(t, err)
		require.NotNil(t, oldest)
		assert.Equal(t, 0.50, *oldest, "lowest id wins oldest")

		newest, err := repo.LatestPrice(ctx, "XRP", w)
		require.NoError(t, err)
		require.NotNil(t, newest)
		assert.Equal(t, 0.75, *newest, "highest id wins newest")
	})
}

func TestPriceGorm_DistinctSymbols(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewPriceRepository(db)

	jan := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPrice(t, db, "BTC", jan, 1)
	seedPrice(t, db, "ETH", jan, 2)
	seedPrice(t, db, "ETH", jan.Add(time.Hour), 3)
	seedPrice(t, db, "SHIB", jan, 4)
	seedPrice(t, db, "ADA", jan, 5)

	t.Run("descending lexicographic, deduplicated", func(t *testing.T) {
		symbols, err := repo.DistinctSymbols(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"SHIB", "ETH", "BTC", "ADA"}, symbols)
	})

	t.Run("excluding removes forbidden symbols", func(t *testing.T) {
		symbols, err := repo.DistinctSymbols(ctx, []string{"SHIB", "ADA"})
		require.NoError(t, err)
		assert.Equal(t, []string{"ETH", "BTC"}, symbols)
	})
}

func TestPriceGorm_InsertBatchAndFind(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewPriceRepository(db)

	jan := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []entity.PricePoint{
		{Symbol: "BTC", Timestamp: jan, Price: 46813.21},
		{Symbol: "BTC", Timestamp: jan.Add(time.Hour), Price: 46900.00},
		{Symbol: "ETH", Timestamp: jan, Price: 3000.00},
		{Symbol: "SHIB", Timestamp: jan, Price: 0.00003},
	}
	require.NoError(t, repo.InsertBatch(ctx, points))

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.InsertBatch(ctx, nil))
	})

	t.Run("find all ordered by symbol desc then timestamp desc", func(t *testing.T) {
		got, err := repo.FindAll(ctx, nil)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, "SHIB", got[0].Symbol)
		assert.Equal(t, "ETH", got[1].Symbol)
		assert.Equal(t, 46900.00, got[2].Price, "newer BTC row first")
		assert.Equal(t, 46813.21, got[3].Price)
	})

	t.Run("find all excludes forbidden symbols", func(t *testing.T) {
		got, err := repo.FindAll(ctx, []string{"SHIB"})
		require.NoError(t, err)
		require.Len(t, got, 3)
		for _, p := range got {
			assert.NotEqual(t, "SHIB", p.Symbol)
		}
	})

	t.Run("find by symbol", func(t *testing.T) {
		got, err := repo.FindBySymbol(ctx, "BTC", []string{"SHIB"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 46900.00, got[0].Price)
	})

	t.Run("find by forbidden symbol yields empty list", func(t *testing.T) {
		got, err := repo.FindBySymbol(ctx, "SHIB", []string{"SHIB"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
