// Package usecase は暗号資産の価格統計に関するビジネスロジックを実装します。
package usecase

import (
	"context"
	"slices"
	"time"

	"crypto_backend/internal/feature/cryptoinfo/domain"
	"crypto_backend/internal/feature/cryptoinfo/domain/entity"
)

// RangeTimeLayout は range-statistics の from/to パラメータと
// インターバルラベルに使う時刻フォーマットです。
const RangeTimeLayout = "2006-01-02T15:04:05"

// PriceRepository は価格データの読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
// 集約クエリはマッチする行が無い場合に nil を返します（エラーではない）。
type PriceRepository interface {
	// MaxPrice は指定シンボルの最高値を返します。window が nil の場合は全履歴が対象です。
	MaxPrice(ctx context.Context, symbol string, window *entity.Window) (*float64, error)
	// MinPrice は指定シンボルの最安値を返します。window が nil の場合は全履歴が対象です。
	MinPrice(ctx context.Context, symbol string, window *entity.Window) (*float64, error)
	// EarliestPrice はウィンドウ内で最も古いレコードの価格を返します。
	EarliestPrice(ctx context.Context, symbol string, window entity.Window) (*float64, error)
	// LatestPrice はウィンドウ内で最も新しいレコードの価格を返します。
	LatestPrice(ctx context.Context, symbol string, window entity.Window) (*float64, error)
	// DistinctSymbols は excluding を除いた既知シンボルをシンボル降順で返します。
	DistinctSymbols(ctx context.Context, excluding []string) ([]string, error)
	// FindAll は excluding を除いた全価格レコードをシンボル降順・時刻降順で返します。
	FindAll(ctx context.Context, excluding []string) ([]entity.PricePoint, error)
	// FindBySymbol は指定シンボルの価格レコードを時刻降順で返します。
	FindBySymbol(ctx context.Context, symbol string, excluding []string) ([]entity.PricePoint, error)
}

// StatisticsUsecase は統計計算エンジンと、禁止シンボルのゲートを兼ねる
// 唯一の問い合わせ窓口です。APIレイヤーは必ずこのusecaseを経由します。
type StatisticsUsecase struct {
	prices PriceRepository
	policy *domain.SymbolPolicy
}

// NewStatisticsUsecase はStatisticsUsecaseの新しいインスタンスを生成します。
func NewStatisticsUsecase(prices PriceRepository, policy *domain.SymbolPolicy) *StatisticsUsecase {
	return &StatisticsUsecase{prices: prices, policy: policy}
}

// ListPrices は保存されている価格レコードを返します。symbol が空でない場合は
// そのシンボルに絞り込みます。禁止シンボルは常に除外されます（絞り込み対象が
// 禁止シンボルの場合は空のリストになります）。
func (su *StatisticsUsecase) ListPrices(ctx context.Context, symbol string) ([]entity.PricePoint, error) {
	if symbol != "" {
		return su.prices.FindBySymbol(ctx, symbol, su.policy.Forbidden())
	}
	return su.prices.FindAll(ctx, su.policy.Forbidden())
}

// MonthlyStatistics は指定シンボル・指定月の統計を返します。
//
// ゲート順序は契約です: 禁止チェックが常に存在チェックより先に行われます。
// データの無い禁止シンボルでも「拒否」を返し、「データなし」にはなりません。
// シンボルが許可されていてもデータが無い場合は (nil, nil) を返します。
func (su *StatisticsUsecase) MonthlyStatistics(ctx context.Context, symbol string, yearMonth time.Time) (*entity.StatisticSummary, error) {
	if su.policy.IsForbidden(symbol) {
		return nil, &domain.SymbolNotAllowedError{Symbol: symbol}
	}
	known, err := su.prices.DistinctSymbols(ctx, su.policy.Forbidden())
	if err != nil {
		return nil, err
	}
	if !slices.Contains(known, symbol) {
		return nil, nil
	}
	window, label := monthWindow(yearMonth)
	return su.windowAggregate(ctx, symbol, window, label)
}

// RangeStatistics は指定シンボル・指定期間 [from, to] の統計を返します。
// ゲート順序は MonthlyStatistics と同一です。
func (su *StatisticsUsecase) RangeStatistics(ctx context.Context, symbol string, from, to time.Time) (*entity.StatisticSummary, error) {
	if su.policy.IsForbidden(symbol) {
		return nil, &domain.SymbolNotAllowedError{Symbol: symbol}
	}
	known, err := su.prices.DistinctSymbols(ctx, su.policy.Forbidden())
	if err != nil {
		return nil, err
	}
	if !slices.Contains(known, symbol) {
		return nil, nil
	}
	window := entity.Window{From: from, To: to}
	label := from.Format(RangeTimeLayout) + " - " + to.Format(RangeTimeLayout)
	return su.windowAggregate(ctx, symbol, window, label)
}

// MonthlyStatisticsForAll は許可された全シンボルの指定月の統計を返します。
// データの無いシンボルは結果から除外されます。順序はシンボル降順です。
func (su *StatisticsUsecase) MonthlyStatisticsForAll(ctx context.Context, yearMonth time.Time) ([]entity.StatisticSummary, error) {
	allowed, err := su.allowedSymbols(ctx)
	if err != nil {
		return nil, err
	}
	window, label := monthWindow(yearMonth)

	out := make([]entity.StatisticSummary, 0, len(allowed))
	for _, symbol := range allowed {
		summary, err := su.windowAggregate(ctx, symbol, window, label)
		if err != nil {
			return nil, err
		}
		if summary != nil {
			out = append(out, *summary)
		}
	}
	return out, nil
}

// AllNormalized は許可された全シンボルの正規化価格 ((max-min)/min) を
// 全履歴を対象に計算して返します。結果が得られないシンボルは除外され、
// 順序はシンボル降順です。
func (su *StatisticsUsecase) AllNormalized(ctx context.Context) ([]entity.NormalizedPrice, error) {
	allowed, err := su.allowedSymbols(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]entity.NormalizedPrice, 0, len(allowed))
	for _, symbol := range allowed {
		np, err := su.normalized(ctx, symbol, nil)
		if err != nil {
			return nil, err
		}
		if np != nil {
			out = append(out, *np)
		}
	}
	return out, nil
}

// HighestNormalizedOnDay は指定日の中で正規化価格が最大のシンボルを返します。
// その日にデータを持つシンボルが無い場合は (nil, nil) を返します。
// 同値の場合は走査順（シンボル降順）で先に現れたものが勝ちます。
func (su *StatisticsUsecase) HighestNormalizedOnDay(ctx context.Context, date time.Time) (*entity.NormalizedPrice, error) {
	allowed, err := su.allowedSymbols(ctx)
	if err != nil {
		return nil, err
	}
	window := dayWindow(date)

	var best *entity.NormalizedPrice
	for _, symbol := range allowed {
		np, err := su.normalized(ctx, symbol, &window)
		if err != nil {
			return nil, err
		}
		if np == nil {
			continue
		}
		if best == nil || np.NormalizedPrice > best.NormalizedPrice {
			best = np
		}
	}
	return best, nil
}

// windowAggregate は4つの集約値（最高値・最安値・最古値・最新値）を取得します。
// いずれか1つでも欠けている場合は部分的なサマリーを作らず nil を返します。
func (su *StatisticsUsecase) windowAggregate(ctx context.Context, symbol string, window entity.Window, label string) (*entity.StatisticSummary, error) {
	max, err := su.prices.MaxPrice(ctx, symbol, &window)
	if err != nil {
		return nil, err
	}
	min, err := su.prices.MinPrice(ctx, symbol, &window)
	if err != nil {
		return nil, err
	}
	oldest, err := su.prices.EarliestPrice(ctx, symbol, window)
	if err != nil {
		return nil, err
	}
	newest, err := su.prices.LatestPrice(ctx, symbol, window)
	if err != nil {
		return nil, err
	}

	if max == nil || min == nil || oldest == nil || newest == nil {
		return nil, nil
	}

	return &entity.StatisticSummary{
		Symbol:      symbol,
		Interval:    label,
		OldestValue: *oldest,
		NewestValue: *newest,
		MinValue:    *min,
		MaxValue:    *max,
	}, nil
}

// normalized は (max-min)/min を計算します。window が nil の場合は全履歴が
// 対象です。min または max が取得できない場合、および min が 0 の場合は
// 未定義として nil を返します（ゼロ除算を前提条件で回避します）。
func (su *StatisticsUsecase) normalized(ctx context.Context, symbol string, window *entity.Window) (*entity.NormalizedPrice, error) {
	max, err := su.prices.MaxPrice(ctx, symbol, window)
	if err != nil {
		return nil, err
	}
	min, err := su.prices.MinPrice(ctx, symbol, window)
	if err != nil {
		return nil, err
	}
	if max == nil || min == nil || *min == 0 {
		return nil, nil
	}
	return &entity.NormalizedPrice{
		Symbol:          symbol,
		NormalizedPrice: (*max - *min) / *min,
	}, nil
}

// allowedSymbols はストアの既知シンボルにポリシーのフィルタを適用します。
// ストア側の NOT IN に加えてポリシー側でも除外するため、設定とデータが
// どちらから来ても禁止シンボルが出力に混ざることはありません。
func (su *StatisticsUsecase) allowedSymbols(ctx context.Context) ([]string, error) {
	known, err := su.prices.DistinctSymbols(ctx, su.policy.Forbidden())
	if err != nil {
		return nil, err
	}
	return su.policy.Allowed(known), nil
}

// monthWindow は指定月の最初の瞬間から最後の瞬間までのウィンドウと
// "YYYY-MM" 形式のラベルを返します。UTC基準です。
func monthWindow(yearMonth time.Time) (entity.Window, string) {
	y, m, _ := yearMonth.UTC().Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return entity.Window{From: from, To: to}, from.Format("2006-01")
}

// dayWindow は指定日の 00:00:00 から その日の最後の瞬間までのウィンドウを返します。
func dayWindow(date time.Time) entity.Window {
	y, m, d := date.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return entity.Window{From: from, To: from.AddDate(0, 0, 1).Add(-time.Nanosecond)}
}
