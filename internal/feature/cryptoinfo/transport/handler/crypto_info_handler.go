// Package handler はcryptoinfoフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crypto_backend/internal/feature/cryptoinfo/domain"
	"crypto_backend/internal/feature/cryptoinfo/domain/entity"
	"crypto_backend/internal/feature/cryptoinfo/transport/http/dto"
	"crypto_backend/internal/feature/cryptoinfo/usecase"
)

// dateLayout は yearMonth / date クエリパラメータの日付フォーマットです。
const dateLayout = "2006-01-02"

// CryptoInfoUsecase は統計計算のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CryptoInfoUsecase interface {
	ListPrices(ctx context.Context, symbol string) ([]entity.PricePoint, error)
	MonthlyStatistics(ctx context.Context, symbol string, yearMonth time.Time) (*entity.StatisticSummary, error)
	MonthlyStatisticsForAll(ctx context.Context, yearMonth time.Time) ([]entity.StatisticSummary, error)
	RangeStatistics(ctx context.Context, symbol string, from, to time.Time) (*entity.StatisticSummary, error)
	AllNormalized(ctx context.Context) ([]entity.NormalizedPrice, error)
	HighestNormalizedOnDay(ctx context.Context, date time.Time) (*entity.NormalizedPrice, error)
}

// CryptoInfoHandler は暗号資産の価格・統計情報のHTTPリクエストを処理します。
type CryptoInfoHandler struct {
	uc CryptoInfoUsecase
}

// NewCryptoInfoHandler は指定されたusecaseでCryptoInfoHandlerの新しいインスタンスを生成します。
func NewCryptoInfoHandler(uc CryptoInfoUsecase) *CryptoInfoHandler {
	return &CryptoInfoHandler{uc: uc}
}

// ListPrices は保存済みの価格レコード一覧を返します。
//
// エンドポイント例:
// GET /api/v1/crypto/info?symbol=BTC
func (h *CryptoInfoHandler) ListPrices(c *gin.Context) {
	symbol := c.Query("symbol")

	points, err := h.uc.ListPrices(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if len(points) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	out := make([]dto.PriceResponse, 0, len(points))
	for _, p := range points {
		out = append(out, dto.PriceResponse{
			Timestamp: p.Timestamp.UTC().Format(time.RFC3339Nano),
			Symbol:    p.Symbol,
			Price:     p.Price,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetStatisticsForAll は許可された全シンボルの月次統計を返します。
//
// エンドポイント例:
// GET /api/v1/crypto/info/statistics?yearMonth=2022-01-05
func (h *CryptoInfoHandler) GetStatisticsForAll(c *gin.Context) {
	yearMonth, ok := parseDateParam(c, "yearMonth")
	if !ok {
		return
	}

	summaries, err := h.uc.MonthlyStatisticsForAll(c.Request.Context(), yearMonth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if len(summaries) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	out := make([]dto.StatisticResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toStatisticResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

// GetStatisticsForSymbol は指定シンボルの月次統計を返します。
// シンボルが禁止リストにある場合は400、データが無い場合は204を返します。
//
// エンドポイント例:
// GET /api/v1/crypto/info/statistics/BTC?yearMonth=2022-01-05
func (h *CryptoInfoHandler) GetStatisticsForSymbol(c *gin.Context) {
	symbol := c.Param("symbol")
	yearMonth, ok := parseDateParam(c, "yearMonth")
	if !ok {
		return
	}

	summary, err := h.uc.MonthlyStatistics(c.Request.Context(), symbol, yearMonth)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if summary == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toStatisticResponse(*summary))
}

// GetRangeStatistics は指定シンボル・指定期間の統計を返します。
// from/to は "2006-01-02T15:04:05" 形式です。
//
// エンドポイント例:
// GET /api/v1/crypto/info/range-statistics/BTC?from=2022-01-01T00:00:00&to=2022-01-31T23:59:59
func (h *CryptoInfoHandler) GetRangeStatistics(c *gin.Context) {
	symbol := c.Param("symbol")

	from, err := time.ParseInLocation(usecase.RangeTimeLayout, c.Query("from"), time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid from parameter, expected format " + usecase.RangeTimeLayout})
		return
	}
	to, err := time.ParseInLocation(usecase.RangeTimeLayout, c.Query("to"), time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid to parameter, expected format " + usecase.RangeTimeLayout})
		return
	}

	summary, err := h.uc.RangeStatistics(c.Request.Context(), symbol, from, to)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if summary == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toStatisticResponse(*summary))
}

// GetNormalized は許可された全シンボルの正規化価格を返します。
//
// エンドポイント例:
// GET /api/v1/crypto/info/normalized
func (h *CryptoInfoHandler) GetNormalized(c *gin.Context) {
	results, err := h.uc.AllNormalized(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if len(results) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	out := make([]dto.NormalizedResponse, 0, len(results))
	for _, n := range results {
		out = append(out, dto.NormalizedResponse{Symbol: n.Symbol, NormalizedPrice: n.NormalizedPrice})
	}
	c.JSON(http.StatusOK, out)
}

// GetHighestNormalized は指定日の正規化価格が最大のシンボルを返します。
//
// エンドポイント例:
// GET /api/v1/crypto/info/normalized/highest?date=2022-01-01
func (h *CryptoInfoHandler) GetHighestNormalized(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	result, err := h.uc.HighestNormalizedOnDay(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if result == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.NormalizedResponse{Symbol: result.Symbol, NormalizedPrice: result.NormalizedPrice})
}

// writeError はusecaseのエラーをHTTPステータスに変換します。
// 禁止シンボルの拒否はクライアントエラー（400）、それ以外は500です。
func (h *CryptoInfoHandler) writeError(c *gin.Context, err error) {
	var notAllowed *domain.SymbolNotAllowedError
	if errors.As(err, &notAllowed) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: notAllowed.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
}

// parseDateParam は "2006-01-02" 形式の必須クエリパラメータを解析します。
// 解析に失敗した場合は400を書き込み、false を返します。
func parseDateParam(c *gin.Context, name string) (time.Time, bool) {
	v, err := time.ParseInLocation(dateLayout, c.Query(name), time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name + " parameter, expected format " + dateLayout})
		return time.Time{}, false
	}
	return v, true
}

func toStatisticResponse(s entity.StatisticSummary) dto.StatisticResponse {
	return dto.StatisticResponse{
		CryptoSymbol: s.Symbol,
		Interval:     s.Interval,
		OldestValue:  s.OldestValue,
		NewestValue:  s.NewestValue,
		MinValue:     s.MinValue,
		MaxValue:     s.MaxValue,
	}
}
