package backtest

import "tradelab/internal/domain"

// Comparison summarizes how a strategy fared against its passive benchmark.
type Comparison struct {
	ExcessReturn     float64
	ExcessCAGR       domain.Metric
	SharpeDifference domain.Metric
	Outperformed     bool
}

// Compare derives the strategy-vs-benchmark summary. It has no failure
// modes: not-computable metrics on either side propagate through the
// differences.
func Compare(strategy, benchmark *Result) Comparison {
	excess := strategy.Metrics.TotalReturn - benchmark.Metrics.TotalReturn
	return Comparison{
		ExcessReturn:     excess,
		ExcessCAGR:       strategy.Metrics.CAGR.Sub(benchmark.Metrics.CAGR),
		SharpeDifference: strategy.Metrics.SharpeRatio.Sub(benchmark.Metrics.SharpeRatio),
		Outperformed:     excess > 0,
	}
}
