// Package dto はcryptoinfoフィーチャーのHTTPレスポンス形式を定義します。
package dto

// StatisticResponse は1シンボル・1ウィンドウの統計サマリーのJSON表現です。
type StatisticResponse struct {
	CryptoSymbol string  `json:"cryptoSymbol"`
	Interval     string  `json:"interval"`
	OldestValue  float64 `json:"oldestValue"`
	NewestValue  float64 `json:"newestValue"`
	MinValue     float64 `json:"minValue"`
	MaxValue     float64 `json:"maxValue"`
}

// NormalizedResponse は正規化価格のJSON表現です。
type NormalizedResponse struct {
	Symbol          string  `json:"symbol"`
	NormalizedPrice float64 `json:"normalizedPrice"`
}

// PriceResponse は保存済み価格レコード1件のJSON表現です。
type PriceResponse struct {
	Timestamp string  `json:"timestamp"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
}

// ErrorResponse はエラー応答のJSON表現です。
type ErrorResponse struct {
	Error string `json:"error"`
}
