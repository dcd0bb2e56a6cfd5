// Package domain defines the core data model shared across the tradelab
// platform: OHLCV bars, validated price and position series, and the
// optional Metric type used for performance statistics.
package domain

import "time"

// Market identifies a trading venue group.
type Market string

// Supported markets.
const (
	MarketUS Market = "us"
)

// Bar is a single daily OHLCV bar as delivered by the market-data provider.
type Bar struct {
	Symbol     string
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
	TradeCount int64
	VWAP       float64
}
