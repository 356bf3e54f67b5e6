// Package handler はbatchフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crypto_backend/internal/feature/batch/transport/http/dto"
	"crypto_backend/internal/feature/batch/usecase"
)

// BatchUsecase は取り込みバッチのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type BatchUsecase interface {
	Run(ctx context.Context) (*usecase.Execution, error)
	LastExecution() *usecase.Execution
}

// BatchHandler は取り込みバッチのHTTPリクエストを処理します。
type BatchHandler struct {
	uc BatchUsecase
}

// NewBatchHandler は指定されたusecaseでBatchHandlerの新しいインスタンスを生成します。
func NewBatchHandler(uc BatchUsecase) *BatchHandler {
	return &BatchHandler{uc: uc}
}

// Trigger は取り込みジョブを手動で起動します。
// 起動を受け付けた時点で202を返します。既に実行中の場合は409です。
//
// エンドポイント例:
// POST /api/v1/crypto/batch/trigger
func (h *BatchHandler) Trigger(c *gin.Context) {
	// リクエスト切断でジョブを中断しない
	ctx := context.WithoutCancel(c.Request.Context())

	exec, err := h.uc.Run(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrJobAlreadyRunning) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, dto.TriggerResponse{JobID: exec.JobID, Status: exec.Status})
}

// Last は最後に実行されたジョブの記録を返します。
// 一度も実行されていない場合は404です。
//
// エンドポイント例:
// GET /api/v1/crypto/batch/last
func (h *BatchHandler) Last(c *gin.Context) {
	exec := h.uc.LastExecution()
	if exec == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "no batch execution found"})
		return
	}
	c.JSON(http.StatusOK, toExecutionResponse(exec))
}

func toExecutionResponse(e *usecase.Execution) dto.ExecutionResponse {
	out := dto.ExecutionResponse{
		JobID:       e.JobID,
		Status:      e.Status,
		StartedAt:   e.StartedAt.Format(time.RFC3339Nano),
		RowsWritten: e.RowsWritten,
		Files:       e.Files,
		Error:       e.Error,
	}
	if !e.FinishedAt.IsZero() {
		out.FinishedAt = e.FinishedAt.Format(time.RFC3339Nano)
	}
	return out
}
