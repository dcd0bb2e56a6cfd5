package backtest

import (
	"sort"
	"time"

	"tradelab/internal/domain"
	"tradelab/internal/strategy"
)

// MaxTickers is the upper bound on tickers in one aggregated backtest.
const MaxTickers = 10

// Aggregate runs the strategy independently over each ticker under an
// equal-weight capital split and merges the per-ticker equity curves into
// one portfolio-level curve.
//
// The per-ticker simulations run over the intersection of all trading-date
// calendars; a missing or too-short intersection is a defined error rather
// than a silent misalignment. The portfolio value on each day is the plain
// sum of the per-ticker equity values, so total capital is conserved by
// construction. With a single ticker the result is exactly the
// single-ticker backtest.
func Aggregate(series map[string]*domain.PriceSeries, spec strategy.Spec, initialCapital, riskFreeRate float64) (*Result, error) {
	return aggregate(series, spec.Positions, spec.MinBars(), initialCapital, riskFreeRate)
}

// AggregateBuyAndHold builds the equal-weight buy-and-hold benchmark across
// the same tickers, through the identical aggregation path with all-ones
// positions.
func AggregateBuyAndHold(series map[string]*domain.PriceSeries, initialCapital, riskFreeRate float64) (*Result, error) {
	allLong := func(prices *domain.PriceSeries) (*domain.PositionSeries, error) {
		return domain.AllLong(prices.Dates()), nil
	}
	return aggregate(series, allLong, 1, initialCapital, riskFreeRate)
}

func aggregate(series map[string]*domain.PriceSeries, positionsFor func(*domain.PriceSeries) (*domain.PositionSeries, error), minBars int, initialCapital, riskFreeRate float64) (*Result, error) {
	if len(series) == 0 || len(series) > MaxTickers {
		return nil, &domain.InvalidParametersError{
			Reason: "ticker count must be between 1 and 10",
		}
	}
	if initialCapital <= 0 {
		return nil, &domain.InvalidCapitalError{Capital: initialCapital}
	}

	tickers := make([]string, 0, len(series))
	for t := range series {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	common := intersectCalendars(series, tickers)
	if len(common) < minBars {
		return nil, &domain.InsufficientDataError{
			Need:    minBars,
			Got:     len(common),
			Tickers: shortCalendarTickers(series, tickers, minBars),
		}
	}

	perCapital := initialCapital / float64(len(tickers))

	results := make([]*Result, 0, len(tickers))
	for _, t := range tickers {
		aligned, err := series[t].Restrict(common)
		if err != nil {
			return nil, err
		}
		positions, err := positionsFor(aligned)
		if err != nil {
			return nil, err
		}
		r, err := Simulate(aligned, positions, perCapital, riskFreeRate)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return mergeResults(results, common, initialCapital, riskFreeRate), nil
}

// mergeResults sums per-ticker equity curves into the portfolio curve and
// recomputes metrics from the summed curve. Trade counts and days in market
// stay reported per ticker; the portfolio-level totals pool them across
// tickers.
func mergeResults(results []*Result, dates []time.Time, initialCapital, riskFreeRate float64) *Result {
	n := len(dates)
	values := make([]float64, n)
	for _, r := range results {
		for t := 0; t < n; t++ {
			values[t] += r.Values[t]
		}
	}

	returns := make([]float64, n-1)
	for t := 1; t < n; t++ {
		returns[t-1] = values[t]/values[t-1] - 1
	}

	perTicker := make([]TickerStats, 0, len(results))
	totalTrades, totalDaysInMarket := 0, 0
	var tradeReturns []float64
	for _, r := range results {
		perTicker = append(perTicker, TickerStats{
			Ticker:       r.Ticker,
			TradeCount:   r.Metrics.NumTrades,
			DaysInMarket: r.Metrics.DaysInMarket,
		})
		totalTrades += r.Metrics.NumTrades
		totalDaysInMarket += r.Metrics.DaysInMarket
		tradeReturns = append(tradeReturns, r.tradeReturns...)
	}

	merged := &Result{
		Scope:        ScopePortfolio,
		Dates:        append([]time.Time(nil), dates...),
		Values:       values,
		Returns:      returns,
		PerTicker:    perTicker,
		tradeReturns: tradeReturns,
	}
	merged.Metrics = computeMetrics(values, returns, initialCapital, riskFreeRate, totalTrades, totalDaysInMarket, n, tradeReturns)
	return merged
}

// intersectCalendars returns the sorted trading dates present in every
// series.
func intersectCalendars(series map[string]*domain.PriceSeries, tickers []string) []time.Time {
	counts := make(map[time.Time]int)
	for _, t := range tickers {
		s := series[t]
		for i := 0; i < s.Len(); i++ {
			counts[s.Date(i)]++
		}
	}

	var common []time.Time
	for d, c := range counts {
		if c == len(tickers) {
			common = append(common, d)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })
	return common
}

// shortCalendarTickers names the tickers responsible for an insufficient
// calendar intersection: those whose own history is already shorter than
// the required lookback. If every individual calendar is long enough (the
// shrinkage came from disjoint dates), all tickers are named.
func shortCalendarTickers(series map[string]*domain.PriceSeries, tickers []string, minBars int) []string {
	var offenders []string
	for _, t := range tickers {
		if series[t].Len() < minBars {
			offenders = append(offenders, t)
		}
	}
	if len(offenders) == 0 {
		offenders = append(offenders, tickers...)
	}
	return offenders
}
