// Package store defines storage interfaces for persisting and retrieving
// cached market data and backtest run history.
package store

import (
	"context"
	"time"

	"tradelab/internal/domain"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars to storage.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol and market within [start, end].
	ReadBars(ctx context.Context, symbol string, market string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols available in the given market.
	ListSymbols(ctx context.Context, market string) ([]string, error)
}

// Run is one recorded backtest execution with its headline metrics. Metric
// fields that were not computable are stored and returned as invalid.
type Run struct {
	ID             int64
	CreatedAt      time.Time
	Strategy       string
	Tickers        []string
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64
	FinalValue     float64
	TotalReturn    float64
	CAGR           domain.Metric
	SharpeRatio    domain.Metric
	MaxDrawdown    float64
	NumTrades      int
	WinRate        domain.Metric
}

// RunStore persists and retrieves backtest run history.
type RunStore interface {
	// SaveRun inserts a run record and returns its assigned ID.
	SaveRun(ctx context.Context, run *Run) (int64, error)

	// GetRun retrieves a single run by its ID.
	GetRun(ctx context.Context, id int64) (*Run, error)

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
