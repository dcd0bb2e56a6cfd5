// Package httpapi provides the HTTP REST API for running backtests and
// browsing strategy metadata and run history. Request and response bodies
// are the wire types in pkg/tradelab, shared with the Go client.
package httpapi

import (
	"fmt"
	"time"

	"tradelab/internal/backtest"
	"tradelab/internal/domain"
	"tradelab/internal/store"
	"tradelab/internal/strategy"
	"tradelab/pkg/tradelab"
)

// ---------------------------------------------------------------------------
// Converters from engine/store types to the wire types
// ---------------------------------------------------------------------------

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func metricPct(m domain.Metric) string {
	if !m.Valid {
		return "n/a"
	}
	return pct(m.Value)
}

// metricPtr maps a not-computable metric to nil so it serializes as null.
func metricPtr(m domain.Metric) *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}

func metricsJSON(m backtest.Metrics) tradelab.Metrics {
	return tradelab.Metrics{
		TotalReturn:    m.TotalReturn,
		TotalReturnPct: pct(m.TotalReturn),
		CAGR:           metricPtr(m.CAGR),
		CAGRPct:        metricPct(m.CAGR),
		SharpeRatio:    metricPtr(m.SharpeRatio),
		MaxDrawdown:    m.MaxDrawdown,
		MaxDrawdownPct: pct(m.MaxDrawdown),
		NumTrades:      m.NumTrades,
		WinRate:        metricPtr(m.WinRate),
		InitialCapital: m.InitialCapital,
		FinalValue:     m.FinalValue,
		DaysInMarket:   m.DaysInMarket,
		TotalDays:      m.TotalDays,
	}
}

func timeSeriesJSON(dates []time.Time, values []float64) tradelab.TimeSeries {
	ds := make([]string, len(dates))
	for i, d := range dates {
		ds[i] = d.Format("2006-01-02")
	}
	return tradelab.TimeSeries{Dates: ds, Values: values}
}

func comparisonJSON(c backtest.Comparison) tradelab.Comparison {
	return tradelab.Comparison{
		ExcessReturn:     c.ExcessReturn,
		ExcessReturnPct:  pct(c.ExcessReturn),
		ExcessCAGR:       metricPtr(c.ExcessCAGR),
		SharpeDifference: metricPtr(c.SharpeDifference),
		Outperformed:     c.Outperformed,
	}
}

func perTickerJSON(stats []backtest.TickerStats) []tradelab.TickerStats {
	if len(stats) == 0 {
		return nil
	}
	out := make([]tradelab.TickerStats, len(stats))
	for i, s := range stats {
		out[i] = tradelab.TickerStats{Ticker: s.Ticker, TradeCount: s.TradeCount, DaysInMarket: s.DaysInMarket}
	}
	return out
}

func strategiesJSON(infos []strategy.Info) []tradelab.StrategyInfo {
	out := make([]tradelab.StrategyInfo, len(infos))
	for i, info := range infos {
		params := make([]tradelab.ParamInfo, len(info.Params))
		for j, p := range info.Params {
			params[j] = tradelab.ParamInfo{
				Name:        p.Name,
				Type:        p.Type,
				Default:     p.Default,
				Min:         p.Min,
				Max:         p.Max,
				Description: p.Description,
			}
		}
		out[i] = tradelab.StrategyInfo{
			Name:        info.Name,
			DisplayName: info.DisplayName,
			Description: info.Description,
			Type:        info.Type,
			Params:      params,
		}
	}
	return out
}

func runJSON(r store.Run) tradelab.Run {
	return tradelab.Run{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		Strategy:       r.Strategy,
		Tickers:        r.Tickers,
		StartDate:      r.StartDate.Format("2006-01-02"),
		EndDate:        r.EndDate.Format("2006-01-02"),
		InitialCapital: r.InitialCapital,
		FinalValue:     r.FinalValue,
		TotalReturn:    r.TotalReturn,
		CAGR:           metricPtr(r.CAGR),
		SharpeRatio:    metricPtr(r.SharpeRatio),
		MaxDrawdown:    r.MaxDrawdown,
		NumTrades:      r.NumTrades,
		WinRate:        metricPtr(r.WinRate),
	}
}
