package backtest

import (
	"tradelab/internal/domain"
)

// Simulate runs a single-ticker backtest of the given positions over the
// given prices.
//
// The simulator applies a one-day execution lag: the position decided from
// information available through day t-1's close earns day t's return,
//
//	strategyReturn[t] = dailyReturn[t] * position[t-1]
//
// This is the load-bearing correctness rule of the engine; without it the
// backtest reads tomorrow's prices.
//
// A flip between adjacent positions counts as one trade, and a series that
// opens long counts its initial entry as a trade.
func Simulate(prices *domain.PriceSeries, positions *domain.PositionSeries, initialCapital, riskFreeRate float64) (*Result, error) {
	if initialCapital <= 0 {
		return nil, &domain.InvalidCapitalError{Capital: initialCapital}
	}
	if !positions.AlignedWith(prices) {
		return nil, &domain.InvalidPositionsError{
			Reason: "position series date index does not match price series",
		}
	}

	n := prices.Len()
	values := make([]float64, n)
	returns := make([]float64, n-1)
	values[0] = initialCapital

	for t := 1; t < n; t++ {
		dailyReturn := prices.Close(t)/prices.Close(t-1) - 1
		strategyReturn := dailyReturn * float64(positions.Value(t-1))
		returns[t-1] = strategyReturn
		values[t] = values[t-1] * (1 + strategyReturn)
	}

	tradeCount := countTrades(positions)
	daysInMarket := 0
	for i := 0; i < n; i++ {
		daysInMarket += positions.Value(i)
	}

	r := &Result{
		Scope:        ScopeSingleTicker,
		Ticker:       prices.Ticker(),
		Dates:        prices.Dates(),
		Values:       values,
		Returns:      returns,
		tradeReturns: completedTrades(positions, values),
	}
	r.Metrics = computeMetrics(values, returns, initialCapital, riskFreeRate, tradeCount, daysInMarket, n, r.tradeReturns)
	return r, nil
}

// BuyAndHold runs the passive benchmark: fully long for the entire period.
// It goes through Simulate with a constant all-ones position series, so the
// benchmark shares the strategy's exact timing semantics.
func BuyAndHold(prices *domain.PriceSeries, initialCapital, riskFreeRate float64) (*Result, error) {
	return Simulate(prices, domain.AllLong(prices.Dates()), initialCapital, riskFreeRate)
}

// countTrades returns the number of position flips. The series is treated
// as starting flat, so an initial long position is itself an entry trade.
func countTrades(positions *domain.PositionSeries) int {
	count := 0
	prev := 0
	for i := 0; i < positions.Len(); i++ {
		if positions.Value(i) != prev {
			count++
		}
		prev = positions.Value(i)
	}
	return count
}

// tradeInterval is one completed round trip: an entry index and the index
// of the matching exit.
type tradeInterval struct {
	entry int
	exit  int
}

// completedTrades pairs each entry with its exit and returns the net equity
// return over each completed holding interval. The equity curve already
// embeds the execution lag, so value[exit]/value[entry] is exactly what the
// round trip earned. An entry with no exit before the series ends is an
// open trade and is excluded.
func completedTrades(positions *domain.PositionSeries, values []float64) []float64 {
	var intervals []tradeInterval
	prev := 0
	entry := -1
	for i := 0; i < positions.Len(); i++ {
		v := positions.Value(i)
		if v == 1 && prev == 0 {
			entry = i
		}
		if v == 0 && prev == 1 && entry >= 0 {
			intervals = append(intervals, tradeInterval{entry: entry, exit: i})
			entry = -1
		}
		prev = v
	}

	rets := make([]float64, 0, len(intervals))
	for _, iv := range intervals {
		if values[iv.entry] == 0 {
			// Equity already wiped out before entry; the interval has no
			// meaningful return.
			continue
		}
		rets = append(rets, values[iv.exit]/values[iv.entry]-1)
	}
	return rets
}
