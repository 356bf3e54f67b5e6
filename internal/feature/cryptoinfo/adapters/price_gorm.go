// Package adapters はcryptoinfoフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"crypto_backend/internal/feature/cryptoinfo/domain/entity"
	"crypto_backend/internal/feature/cryptoinfo/usecase"
)

// insertChunkSize は一括投入時のチャンクサイズです。
const insertChunkSize = 100

// priceGorm はPriceRepositoryインターフェースのgorm実装です。
type priceGorm struct {
	db *gorm.DB
}

var _ usecase.PriceRepository = (*priceGorm)(nil)

// NewPriceRepository は指定されたDB接続でpriceGormリポジトリの新しいインスタンスを生成します。
func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

// PricePointModel は price_points テーブルの行を表します。
// ID は自動採番で、同一タイムスタンプのレコードのタイブレークに使われます
// （挿入順の早い行が「最古」、遅い行が「最新」になります）。
type PricePointModel struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"size:16;not null;index:price_sym_time,priority:1"`
	Timestamp time.Time `gorm:"not null;index:price_sym_time,priority:2"`
	Price     float64   `gorm:"not null"`
}

func (PricePointModel) TableName() string {
	return "price_points"
}

func toModel(p entity.PricePoint) PricePointModel {
	return PricePointModel{
		Symbol:    p.Symbol,
		Timestamp: p.Timestamp,
		Price:     p.Price,
	}
}

func toEntity(m PricePointModel) entity.PricePoint {
	return entity.PricePoint{
		Symbol:    m.Symbol,
		Timestamp: m.Timestamp,
		Price:     m.Price,
	}
}

// InsertBatch は価格レコードをチャンク単位で一括挿入します。
// 取り込みバッチの書き込みパスで使われます。
func (r *priceGorm) InsertBatch(ctx context.Context, points []entity.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	ms := make([]PricePointModel, 0, len(points))
	for _, p := range points {
		ms = append(ms, toModel(p))
	}
	return r.db.WithContext(ctx).CreateInBatches(&ms, insertChunkSize).Error
}

// MaxPrice は指定シンボルの最高値を返します。レコードが無い場合は nil です。
func (r *priceGorm) MaxPrice(ctx context.Context, symbol string, window *entity.Window) (*float64, error) {
	return r.aggregate(ctx, "MAX(price)", symbol, window)
}

// MinPrice は指定シンボルの最安値を返します。レコードが無い場合は nil です。
func (r *priceGorm) MinPrice(ctx context.Context, symbol string, window *entity.Window) (*float64, error) {
	return r.aggregate(ctx, "MIN(price)", symbol, window)
}

func (r *priceGorm) aggregate(ctx context.Context, expr, symbol string, window *entity.Window) (*float64, error) {
	q := r.db.WithContext(ctx).
		Model(&PricePointModel{}).
		Where("symbol = ?", symbol)
	if window != nil {
		q = q.Where("timestamp >= ? AND timestamp <= ?", window.From, window.To)
	}
	var v sql.NullFloat64
	if err := q.Select(expr).Scan(&v).Error; err != nil {
		return nil, err
	}
	if !v.Valid {
		return nil, nil
	}
	f := v.Float64
	return &f, nil
}

// EarliestPrice はウィンドウ内で最も古いレコードの価格を返します。
// タイムスタンプが同一の場合はIDが最小の行が選ばれます。
func (r *priceGorm) EarliestPrice(ctx context.Context, symbol string, window entity.Window) (*float64, error) {
	return r.edgePrice(ctx, symbol, window, "timestamp ASC, id ASC")
}

// LatestPrice はウィンドウ内で最も新しいレコードの価格を返します。
// タイムスタンプが同一の場合はIDが最大の行が選ばれます。
func (r *priceGorm) LatestPrice(ctx context.Context, symbol string, window entity.Window) (*float64, error) {
	return r.edgePrice(ctx, symbol, window, "timestamp DESC, id DESC")
}

func (r *priceGorm) edgePrice(ctx context.Context, symbol string, window entity.Window, order string) (*float64, error) {
	var prices []float64
	err := r.db.WithContext(ctx).
		Model(&PricePointModel{}).
		Where("symbol = ? AND timestamp >= ? AND timestamp <= ?", symbol, window.From, window.To).
		Order(order).
		Limit(1).
		Pluck("price", &prices).Error
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, nil
	}
	return &prices[0], nil
}

// DistinctSymbols は excluding を除いた既知シンボルをシンボル降順で返します。
func (r *priceGorm) DistinctSymbols(ctx context.Context, excluding []string) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&PricePointModel{}).
		Distinct()
	if len(excluding) > 0 {
		q = q.Where("symbol NOT IN ?", excluding)
	}
	var symbols []string
	if err := q.Order("symbol DESC").Pluck("symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// FindAll は excluding を除いた全レコードをシンボル降順・時刻降順で返します。
func (r *priceGorm) FindAll(ctx context.Context, excluding []string) ([]entity.PricePoint, error) {
	q := r.db.WithContext(ctx).Model(&PricePointModel{})
	if len(excluding) > 0 {
		q = q.Where("symbol NOT IN ?", excluding)
	}
	return r.find(q)
}

// FindBySymbol は指定シンボルのレコードを時刻降順で返します。
// excluding に含まれるシンボルを指定した場合は空のリストになります。
func (r *priceGorm) FindBySymbol(ctx context.Context, symbol string, excluding []string) ([]entity.PricePoint, error) {
	q := r.db.WithContext(ctx).
		Model(&PricePointModel{}).
		Where("symbol = ?", symbol)
	if len(excluding) > 0 {
		q = q.Where("symbol NOT IN ?", excluding)
	}
	return r.find(q)
}

func (r *priceGorm) find(q *gorm.DB) ([]entity.PricePoint, error) {
	var rows []PricePointModel
	if err := q.Order("symbol DESC, timestamp DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PricePoint, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
