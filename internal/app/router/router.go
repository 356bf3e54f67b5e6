package router

import (
	"github.com/gin-gonic/gin"

	batchhandler "crypto_backend/internal/feature/batch/transport/handler"
	cryptohandler "crypto_backend/internal/feature/cryptoinfo/transport/handler"
	"crypto_backend/internal/platform/http/handler"
)

func NewRouter(info *cryptohandler.CryptoInfoHandler, batch *batchhandler.BatchHandler,
	rateLimit gin.HandlerFunc) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", handler.Health)

	// すべてのAPIルートにレートリミッターを適用
	api := r.Group("/api/v1/crypto")
	api.Use(rateLimit)
	{
		api.GET("/info", info.ListPrices)
		api.GET("/info/statistics", info.GetStatisticsForAll)
		api.GET("/info/statistics/:symbol", info.GetStatisticsForSymbol)
		api.GET("/info/range-statistics/:symbol", info.GetRangeStatistics)
		api.GET("/info/normalized", info.GetNormalized)
		api.GET("/info/normalized/highest", info.GetHighestNormalized)

		api.POST("/batch/trigger", batch.Trigger)
		api.GET("/batch/last", batch.Last)
	}

	return r
}
