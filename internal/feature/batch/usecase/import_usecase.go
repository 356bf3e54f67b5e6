// Package usecase はCSV価格データの取り込みバッチを実装します。
package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"crypto_backend/internal/feature/cryptoinfo/domain/entity"
)

// Execution status values.
const (
	StatusStarted   = "STARTED"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// importChunkSize は1回の書き込みで渡す行数です。
const importChunkSize = 100

// csvFilePattern は取り込み対象ファイルのグロブパターンです。
// 例: BTC_values.csv, ETH_values.csv
const csvFilePattern = "*_values.csv"

// ErrJobAlreadyRunning は取り込みジョブが既に実行中の場合に返されます。
// ジョブは同時に1つしか実行できません。
var ErrJobAlreadyRunning = errors.New("import job is already running")

// PriceWriter は価格レコードの書き込みレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PriceWriter interface {
	InsertBatch(ctx context.Context, points []entity.PricePoint) error
}

// Execution は取り込みジョブ1回分の実行記録です。
type Execution struct {
	JobID       int64
	Status      string
	StartedAt   time.Time
	FinishedAt  time.Time
	RowsWritten int
	Files       []string
	Error       string
}

// ImportUsecase はCSVファイルから価格データを読み取り、ストアへ永続化する
// ユースケースを定義します。手動トリガー・スケジューラ・ingestコマンドの
// いずれからも同じ経路で実行されます。
type ImportUsecase struct {
	prices PriceWriter
	dir    string
	log    *slog.Logger

	running atomic.Bool
	mu      sync.RWMutex // guards last
	last    *Execution
}

// NewImportUsecase はImportUsecaseの新しいインスタンスを生成します。
// dir は *_values.csv ファイルを探すディレクトリです。
func NewImportUsecase(prices PriceWriter, dir string, log *slog.Logger) *ImportUsecase {
	return &ImportUsecase{prices: prices, dir: dir, log: log}
}

// Run は取り込みジョブを1回実行し、実行記録を返します。
// 既に実行中の場合は ErrJobAlreadyRunning を返します。
// 行の形式は timestamp,symbol,price（timestampはエポックミリ秒）で、
// 各ファイルの先頭1行はヘッダとして読み飛ばします。不正な行はジョブ全体を
// 失敗させます。
func (u *ImportUsecase) Run(ctx context.Context) (*Execution, error) {
	if !u.running.CompareAndSwap(false, true) {
		return nil, ErrJobAlreadyRunning
	}
	defer u.running.Store(false)

	exec := &Execution{
		JobID:     time.Now().UnixMilli(),
		Status:    StatusStarted,
		StartedAt: time.Now().UTC(),
	}
	u.setLast(exec)
	u.log.Info("import job started", "jobId", exec.JobID, "dir", u.dir)

	files, err := filepath.Glob(filepath.Join(u.dir, csvFilePattern))
	if err != nil {
		return u.fail(exec, fmt.Errorf("discover csv files: %w", err))
	}
	sort.Strings(files)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return u.fail(exec, err)
		}
		rows, err := u.importFile(ctx, file)
		if err != nil {
			return u.fail(exec, fmt.Errorf("import %s: %w", filepath.Base(file), err))
		}
		exec.RowsWritten += rows
		exec.Files = append(exec.Files, filepath.Base(file))
	}

	exec.Status = StatusCompleted
	exec.FinishedAt = time.Now().UTC()
	u.setLast(exec)
	u.log.Info("import job completed", "jobId", exec.JobID, "files", len(exec.Files), "rows", exec.RowsWritten)
	return exec, nil
}

// LastExecution は最後に実行されたジョブの記録を返します。
// 一度も実行されていない場合は nil です。
func (u *ImportUsecase) LastExecution() *Execution {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.last == nil {
		return nil
	}
	cp := *u.last
	cp.Files = append([]string(nil), u.last.Files...)
	return &cp
}

func (u *ImportUsecase) setLast(exec *Execution) {
	u.mu.Lock()
	defer u.mu.Unlock()
	cp := *exec
	cp.Files = append([]string(nil), exec.Files...)
	u.last = &cp
}

func (u *ImportUsecase) fail(exec *Execution, err error) (*Execution, error) {
	exec.Status = StatusFailed
	exec.Error = err.Error()
	exec.FinishedAt = time.Now().UTC()
	u.setLast(exec)
	u.log.Error("import job failed", "jobId", exec.JobID, "error", err)
	return exec, err
}

// importFile は1ファイルを読み取り、チャンク単位でストアへ書き込みます。
// 書き込んだ行数を返します。
func (u *ImportUsecase) importFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3

	// ヘッダ行を読み飛ばす
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, err
	}

	written := 0
	batch := make([]entity.PricePoint, 0, importChunkSize)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, err
		}

		point, err := parseRow(record)
		if err != nil {
			return written, err
		}
		batch = append(batch, point)

		if len(batch) == importChunkSize {
			if err := u.prices.InsertBatch(ctx, batch); err != nil {
				return written, err
			}
			written += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := u.prices.InsertBatch(ctx, batch); err != nil {
			return written, err
		}
		written += len(batch)
	}
	return written, nil
}

// parseRow は timestamp,symbol,price 形式の1行をPricePointへ変換します。
func parseRow(record []string) (entity.PricePoint, error) {
	millis, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return entity.PricePoint{}, fmt.Errorf("invalid timestamp %q: %w", record[0], err)
	}
	symbol := record[1]
	if symbol == "" {
		return entity.PricePoint{}, errors.New("empty symbol")
	}
	price, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return entity.PricePoint{}, fmt.Errorf("invalid price %q: %w", record[2], err)
	}
	if price < 0 {
		return entity.PricePoint{}, fmt.Errorf("negative price %q", record[2])
	}
	return entity.PricePoint{
		Symbol:    symbol,
		Timestamp: time.UnixMilli(millis).UTC(),
		Price:     price,
	}, nil
}
