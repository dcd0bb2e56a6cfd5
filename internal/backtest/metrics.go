package backtest

import (
	"math"

	"tradelab/internal/domain"
)

// tradingDaysPerYear is the fixed day-count convention used to annualize
// CAGR and Sharpe. It is applied uniformly to strategy and benchmark so
// comparisons stay consistent.
const tradingDaysPerYear = 252

// computeMetrics derives the standardized metric set from an equity curve
// and its daily return series. Every function here is total over well-formed
// input: degenerate cases resolve to NotComputable sentinels, never to a
// division fault or a NaN handed to the caller.
func computeMetrics(values, returns []float64, initialCapital, riskFreeRate float64, tradeCount, daysInMarket, totalDays int, tradeReturns []float64) Metrics {
	finalValue := values[len(values)-1]
	return Metrics{
		TotalReturn:    finalValue/initialCapital - 1,
		CAGR:           cagr(finalValue, initialCapital, totalDays),
		SharpeRatio:    sharpeRatio(returns, riskFreeRate),
		MaxDrawdown:    maxDrawdown(values),
		NumTrades:      tradeCount,
		WinRate:        winRate(tradeReturns),
		InitialCapital: initialCapital,
		FinalValue:     finalValue,
		DaysInMarket:   daysInMarket,
		TotalDays:      totalDays,
	}
}

// cagr annualizes the total return over totalDays trading days. A
// single-point series has no return interval, so its CAGR is not
// computable. A curve that ended at zero annualizes to exactly -1.
func cagr(finalValue, initialCapital float64, totalDays int) domain.Metric {
	if totalDays < 2 {
		return domain.NotComputable
	}
	years := float64(totalDays) / tradingDaysPerYear
	return domain.MetricOf(math.Pow(finalValue/initialCapital, 1/years) - 1)
}

// sharpeRatio computes the annualized Sharpe ratio over the daily strategy
// returns, using the population standard deviation. A zero-variance return
// series (all-flat positions, constant prices) has no defined Sharpe.
func sharpeRatio(returns []float64, riskFreeRate float64) domain.Metric {
	if len(returns) == 0 {
		return domain.NotComputable
	}

	dailyRiskFree := riskFreeRate / tradingDaysPerYear

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return domain.NotComputable
	}

	return domain.MetricOf((mean - dailyRiskFree) / std * math.Sqrt(tradingDaysPerYear))
}

// maxDrawdown returns the largest decline from a running peak, as a
// fraction in [-1, 0]. A curve that never dips below its own high-water
// mark has drawdown 0.
func maxDrawdown(values []float64) float64 {
	peak := values[0]
	minDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		dd := (v - peak) / peak
		if dd < minDD {
			minDD = dd
		}
	}
	return minDD
}

// winRate returns the fraction of completed round trips with a positive net
// return. Zero completed trades yields NotComputable so that "no signal"
// stays distinguishable from "every trade lost".
func winRate(tradeReturns []float64) domain.Metric {
	if len(tradeReturns) == 0 {
		return domain.NotComputable
	}
	wins := 0
	for _, r := range tradeReturns {
		if r > 0 {
			wins++
		}
	}
	return domain.MetricOf(float64(wins) / float64(len(tradeReturns)))
}
