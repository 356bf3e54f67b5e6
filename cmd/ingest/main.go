package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	batchusecase "crypto_backend/internal/feature/batch/usecase"
	"crypto_backend/internal/feature/cryptoinfo/adapters"
	"crypto_backend/internal/platform/config"
	"crypto_backend/internal/platform/db"
	"crypto_backend/internal/platform/logging"
)

func main() {
	logger := logging.NewLogger(slog.LevelInfo)
	cfg := config.LoadConfig()

	db := db.OpenDB()
	priceRepo := adapters.NewPriceRepository(db)
	uc := batchusecase.NewImportUsecase(priceRepo, cfg.CSVDir, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	exec, err := uc.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("import ok: %d rows from %d files", exec.RowsWritten, len(exec.Files))
}
