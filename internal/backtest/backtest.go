// Package backtest evaluates a daily position series against historical
// prices, producing an equity curve and standardized performance metrics.
// Everything in this package is pure: the same inputs always produce the
// same result, no state survives a call, and nothing here performs I/O.
package backtest

import (
	"time"

	"tradelab/internal/domain"
)

// Scope identifies what a Result covers.
type Scope string

// Result scopes.
const (
	ScopeSingleTicker Scope = "single_ticker"
	ScopePortfolio    Scope = "portfolio"
)

// TickerStats holds the per-ticker trade accounting retained in aggregated
// results so a multi-ticker backtest stays diagnosable.
type TickerStats struct {
	Ticker       string
	TradeCount   int
	DaysInMarket int
}

// Metrics is the standardized performance metric set derived from an equity
// curve and its daily return series.
type Metrics struct {
	TotalReturn    float64
	CAGR           domain.Metric
	SharpeRatio    domain.Metric
	MaxDrawdown    float64
	NumTrades      int
	WinRate        domain.Metric
	InitialCapital float64
	FinalValue     float64
	DaysInMarket   int
	TotalDays      int
}

// Result is the complete outcome of one backtest. It is created fresh per
// request and never mutated afterwards.
type Result struct {
	Scope  Scope
	Ticker string // single-ticker scope only

	// Equity curve: Values[0] equals the initial capital. Returns holds
	// the realized daily strategy returns, one per day after the first.
	Dates   []time.Time
	Values  []float64
	Returns []float64

	Metrics Metrics

	// PerTicker is populated for portfolio scope.
	PerTicker []TickerStats

	// Net returns of completed round trips, kept so aggregation can pool
	// win rates across tickers.
	tradeReturns []float64
}

// FinalValue returns the last point of the equity curve.
func (r *Result) FinalValue() float64 {
	return r.Values[len(r.Values)-1]
}
