// Package dto はbatchフィーチャーのHTTPレスポンス形式を定義します。
package dto

// ExecutionResponse は取り込みジョブ1回分の実行記録のJSON表現です。
type ExecutionResponse struct {
	JobID       int64    `json:"jobId"`
	Status      string   `json:"status"`
	StartedAt   string   `json:"startedAt"`
	FinishedAt  string   `json:"finishedAt,omitempty"`
	RowsWritten int      `json:"rowsWritten"`
	Files       []string `json:"files,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// TriggerResponse はジョブ起動時のJSON表現です。
type TriggerResponse struct {
	JobID  int64  `json:"jobId"`
	Status string `json:"status"`
}

// ErrorResponse はエラー応答のJSON表現です。
type ErrorResponse struct {
	Error string `json:"error"`
}
