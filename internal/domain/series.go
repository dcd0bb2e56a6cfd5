package domain

import (
	"fmt"
	"math"
	"time"
)

// PriceSeries is an immutable sequence of (trading date, closing price)
// pairs with strictly increasing dates and positive, finite prices. It is
// validated once at construction; accessors never expose internal slices
// for mutation.
type PriceSeries struct {
	ticker string
	dates  []time.Time
	closes []float64
}

// NewPriceSeries validates and constructs a PriceSeries. Dates must be
// strictly increasing and closes must be positive and finite, one per date.
func NewPriceSeries(ticker string, dates []time.Time, closes []float64) (*PriceSeries, error) {
	if len(dates) == 0 {
		return nil, &InvalidSeriesError{Ticker: ticker, Reason: "empty series"}
	}
	if len(dates) != len(closes) {
		return nil, &InvalidSeriesError{
			Ticker: ticker,
			Reason: fmt.Sprintf("%d dates but %d closes", len(dates), len(closes)),
		}
	}
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
			return nil, &InvalidSeriesError{
				Ticker: ticker,
				Reason: fmt.Sprintf("non-positive or non-finite close %g at index %d", c, i),
			}
		}
		if i > 0 && !dates[i].After(dates[i-1]) {
			return nil, &InvalidSeriesError{
				Ticker: ticker,
				Reason: fmt.Sprintf("dates not strictly increasing at index %d", i),
			}
		}
	}

	s := &PriceSeries{
		ticker: ticker,
		dates:  make([]time.Time, len(dates)),
		closes: make([]float64, len(closes)),
	}
	copy(s.dates, dates)
	copy(s.closes, closes)
	return s, nil
}

// Ticker returns the ticker symbol the series belongs to.
func (s *PriceSeries) Ticker() string { return s.ticker }

// Len returns the number of trading days in the series.
func (s *PriceSeries) Len() int { return len(s.dates) }

// Date returns the trading date at index i.
func (s *PriceSeries) Date(i int) time.Time { return s.dates[i] }

// Close returns the closing price at index i.
func (s *PriceSeries) Close(i int) float64 { return s.closes[i] }

// Dates returns a copy of the trading-date index.
func (s *PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.dates))
	copy(out, s.dates)
	return out
}

// Closes returns a copy of the closing prices.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.closes))
	copy(out, s.closes)
	return out
}

// Restrict returns a new series containing only the given dates, which must
// all be present in the series and in increasing order. Used by the
// multi-ticker aggregator to align unequal trading calendars.
func (s *PriceSeries) Restrict(dates []time.Time) (*PriceSeries, error) {
	idx := make(map[time.Time]int, len(s.dates))
	for i, d := range s.dates {
		idx[d] = i
	}
	closes := make([]float64, len(dates))
	for i, d := range dates {
		j, ok := idx[d]
		if !ok {
			return nil, &InvalidSeriesError{
				Ticker: s.ticker,
				Reason: fmt.Sprintf("date %s not in series", d.Format("2006-01-02")),
			}
		}
		closes[i] = s.closes[j]
	}
	return NewPriceSeries(s.ticker, dates, closes)
}

// PositionSeries is a sequence of daily positions, one per trading date of
// the price series it was derived from. Position values are restricted to
// 0 (flat) and 1 (fully long).
type PositionSeries struct {
	dates  []time.Time
	values []int
}

// NewPositionSeries validates and constructs a PositionSeries.
func NewPositionSeries(dates []time.Time, values []int) (*PositionSeries, error) {
	if len(dates) == 0 {
		return nil, &InvalidPositionsError{Reason: "empty series"}
	}
	if len(dates) != len(values) {
		return nil, &InvalidPositionsError{
			Reason: fmt.Sprintf("%d dates but %d positions", len(dates), len(values)),
		}
	}
	for i, v := range values {
		if v != 0 && v != 1 {
			return nil, &InvalidPositionsError{
				Reason: fmt.Sprintf("position %d at index %d, must be 0 or 1", v, i),
			}
		}
	}

	p := &PositionSeries{
		dates:  make([]time.Time, len(dates)),
		values: make([]int, len(values)),
	}
	copy(p.dates, dates)
	copy(p.values, values)
	return p, nil
}

// AllLong returns a constant always-long position series over the given
// dates. The buy-and-hold benchmark is built from it, so benchmark and
// strategy share identical simulation timing.
func AllLong(dates []time.Time) *PositionSeries {
	values := make([]int, len(dates))
	for i := range values {
		values[i] = 1
	}
	p, _ := NewPositionSeries(dates, values)
	return p
}

// Len returns the number of positions.
func (p *PositionSeries) Len() int { return len(p.values) }

// Date returns the trading date at index i.
func (p *PositionSeries) Date(i int) time.Time { return p.dates[i] }

// Value returns the position at index i.
func (p *PositionSeries) Value(i int) int { return p.values[i] }

// Values returns a copy of the position values.
func (p *PositionSeries) Values() []int {
	out := make([]int, len(p.values))
	copy(out, p.values)
	return out
}

// AlignedWith reports whether the position series has exactly the same date
// index as the given price series.
func (p *PositionSeries) AlignedWith(s *PriceSeries) bool {
	if p.Len() != s.Len() {
		return false
	}
	for i := range p.dates {
		if !p.dates[i].Equal(s.dates[i]) {
			return false
		}
	}
	return true
}
