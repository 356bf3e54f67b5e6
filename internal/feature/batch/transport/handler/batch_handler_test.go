package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"crypto_backend/internal/feature/batch/transport/handler"
	"crypto_backend/internal/feature/batch/usecase"
)

// mockBatchUsecase はBatchUsecaseインターフェースのモック実装です。
type mockBatchUsecase struct {
	RunFunc           func(ctx context.Context) (*usecase.Execution, error)
	LastExecutionFunc func() *usecase.Execution
}

func (m *mockBatchUsecase) Run(ctx context.Context) (*usecase.Execution, error) {
	return m.RunFunc(ctx)
}

func (m *mockBatchUsecase) LastExecution() *usecase.Execution {
	return m.LastExecutionFunc()
}

func newTestRouter(mockUC *mockBatchUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewBatchHandler(mockUC)

	r := gin.New()
	r.POST("/batch/trigger", h.Trigger)
	r.GET("/batch/last", h.Last)
	return r
}

// TestBatchHandler_Trigger は手動トリガーエンドポイントをテストします。
func TestBatchHandler_Trigger(t *testing.T) {
	tests := []struct {
		name           string
		mockRun        func(ctx context.Context) (*usecase.Execution, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "accepted: job launched",
			mockRun: func(ctx context.Context) (*usecase.Execution, error) {
				return &usecase.Execution{JobID: 1700000000000, Status: usecase.StatusCompleted}, nil
			},
			expectedStatus: http.StatusAccepted,
			expectedBody:   `{"jobId":1700000000000,"status":"COMPLETED"}`,
		},
		{
			name: "conflict: job already running",
			mockRun: func(ctx context.Context) (*usecase.Execution, error) {
				return nil, usecase.ErrJobAlreadyRunning
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"import job is already running"}`,
		},
		{
			name: "error: job failure returns 500",
			mockRun: func(ctx context.Context) (*usecase.Execution, error) {
				return nil, errors.New("import BTC_values.csv: invalid price")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"import BTC_values.csv: invalid price"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockBatchUsecase{RunFunc: tt.mockRun}
			r := newTestRouter(mockUC)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/batch/trigger", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

// TestBatchHandler_Last は最終実行記録エンドポイントをテストします。
func TestBatchHandler_Last(t *testing.T) {
	t.Run("success: last execution record", func(t *testing.T) {
		started := time.Date(2022, 1, 1, 1, 0, 0, 0, time.UTC)
		mockUC := &mockBatchUsecase{
			LastExecutionFunc: func() *usecase.Execution {
				return &usecase.Execution{
					JobID:       1700000000000,
					Status:      usecase.StatusCompleted,
					StartedAt:   started,
					FinishedAt:  started.Add(2 * time.Second),
					RowsWritten: 450,
					Files:       []string{"BTC_values.csv", "ETH_values.csv"},
				}
			},
		}
		r := newTestRouter(mockUC)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/batch/last", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"jobId": 1700000000000,
			"status": "COMPLETED",
			"startedAt": "2022-01-01T01:00:00Z",
			"finishedAt": "2022-01-01T01:00:02Z",
			"rowsWritten": 450,
			"files": ["BTC_values.csv", "ETH_values.csv"]
		}`, w.Body.String())
	})

	t.Run("not found: job never ran", func(t *testing.T) {
		mockUC := &mockBatchUsecase{
			LastExecutionFunc: func() *usecase.Execution { return nil },
		}
		r := newTestRouter(mockUC)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/batch/last", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"no batch execution found"}`, w.Body.String())
	})
}
