package main

import (
	"log"
	"log/slog"

	"crypto_backend/internal/app/router"
	"crypto_backend/internal/feature/batch/scheduler"
	batchhandler "crypto_backend/internal/feature/batch/transport/handler"
	batchusecase "crypto_backend/internal/feature/batch/usecase"
	"crypto_backend/internal/feature/cryptoinfo/adapters"
	"crypto_backend/internal/feature/cryptoinfo/domain"
	cryptohandler "crypto_backend/internal/feature/cryptoinfo/transport/handler"
	cryptousecase "crypto_backend/internal/feature/cryptoinfo/usecase"
	"crypto_backend/internal/platform/config"
	infradb "crypto_backend/internal/platform/db"
	"crypto_backend/internal/platform/logging"
	infraredis "crypto_backend/internal/platform/redis"
	"crypto_backend/internal/shared/ratelimiter"
)

func main() {
	logger := logging.NewLogger(slog.LevelInfo)
	cfg := config.LoadConfig()

	// db
	db := infradb.OpenDB()

	// Rate limiter: Redisが使える場合はウィンドウ状態を共有、
	// 使えない場合はプロセス内フォールバック
	var limiter ratelimiter.Limiter
	if rdb, err := infraredis.NewRedisClient(); err != nil {
		logger.Warn("Redis unavailable, using in-process rate limiter", "error", err)
		limiter = ratelimiter.NewLocalLimiter(cfg.RateLimit, cfg.RateWindow)
	} else {
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("failed to close Redis client", "error", err)
			}
		}()
		limiter = ratelimiter.NewRedisLimiter(rdb, cfg.RateLimit, cfg.RateWindow)
	}

	// Repository
	priceRepo := adapters.NewPriceRepository(db)

	// Policy + Usecase
	policy := domain.NewSymbolPolicy(cfg.ForbiddenSymbols)
	statsUC := cryptousecase.NewStatisticsUsecase(priceRepo, policy)
	importUC := batchusecase.NewImportUsecase(priceRepo, cfg.CSVDir, logger)

	// Handler
	infoH := cryptohandler.NewCryptoInfoHandler(statsUC)
	batchH := batchhandler.NewBatchHandler(importUC)

	// 定期取り込みスケジューラ
	sched := scheduler.NewScheduler(importUC, logger)
	if err := sched.Register(cfg.BatchCron); err != nil {
		log.Fatal(err)
	}
	sched.Start()
	defer sched.Stop()

	// ルータ生成
	r := router.NewRouter(infoH, batchH, ratelimiter.Middleware(limiter, logger))

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
