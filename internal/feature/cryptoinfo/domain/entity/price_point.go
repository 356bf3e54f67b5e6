// Package entity defines the domain models for the cryptoinfo feature.
package entity

import "time"

// PricePoint represents a single quoted price for a crypto symbol
// at a specific instant. Records are immutable once stored.
type PricePoint struct {
	Symbol    string    // Crypto ticker symbol (e.g., "BTC", "ETH")
	Timestamp time.Time // Instant the price was quoted, millisecond precision, UTC
	Price     float64   // Quoted price, non-negative
}

// StatisticSummary aggregates the oldest, newest, minimum and maximum
// prices of one symbol over a time window. It is derived per query and
// never persisted.
type StatisticSummary struct {
	Symbol      string  // Crypto ticker symbol
	Interval    string  // Textual label of the window ("2022-01" or "<from> - <to>")
	OldestValue float64 // Price of the earliest record in the window
	NewestValue float64 // Price of the latest record in the window
	MinValue    float64 // Minimum price in the window
	MaxValue    float64 // Maximum price in the window
}

// NormalizedPrice is the normalized volatility score of one symbol:
// (max - min) / min over a population of price points.
// Undefined when the population is empty or min is zero.
type NormalizedPrice struct {
	Symbol          string
	NormalizedPrice float64
}

// Window is an inclusive timestamp interval [From, To] used to scope
// aggregate queries.
type Window struct {
	From time.Time
	To   time.Time
}
