// Package domain defines domain-level types and errors for the cryptoinfo feature.
package domain

// SymbolNotAllowedError indicates that the requested symbol is on the
// configured forbidden list. It is a rejection of the request itself and
// must never be confused with "no data found", which is represented
// structurally (nil result / empty slice), not as an error.
type SymbolNotAllowedError struct {
	Symbol string
}

// Error returns the rejection message. The literal symbol is part of the
// message so clients can check which symbol was refused.
func (e *SymbolNotAllowedError) Error() string {
	return "Given crypto symbol is not allowed:" + e.Symbol
}
