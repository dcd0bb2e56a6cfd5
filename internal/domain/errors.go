package domain

import (
	"fmt"
	"strings"
)

// InvalidParametersError reports malformed strategy parameters, such as a
// short window that is not smaller than the long window.
type InvalidParametersError struct {
	Reason string
}

func (e *InvalidParametersError) Error() string {
	return "invalid parameters: " + e.Reason
}

// InsufficientDataError reports a price history shorter than the strategy's
// minimum lookback, or an empty trading-calendar intersection across tickers.
type InsufficientDataError struct {
	Need    int
	Got     int
	Tickers []string
}

func (e *InsufficientDataError) Error() string {
	msg := fmt.Sprintf("insufficient data: need at least %d bars, got %d", e.Need, e.Got)
	if len(e.Tickers) > 0 {
		msg += " (tickers: " + strings.Join(e.Tickers, ", ") + ")"
	}
	return msg
}

// InvalidPositionsError reports position values outside {0, 1} or a position
// series whose date index does not match its price series.
type InvalidPositionsError struct {
	Reason string
}

func (e *InvalidPositionsError) Error() string {
	return "invalid positions: " + e.Reason
}

// InvalidCapitalError reports a non-positive initial capital.
type InvalidCapitalError struct {
	Capital float64
}

func (e *InvalidCapitalError) Error() string {
	return fmt.Sprintf("invalid capital: initial capital must be positive, got %g", e.Capital)
}

// InvalidTickerError reports a ticker symbol that does not match the
// accepted symbol format.
type InvalidTickerError struct {
	Ticker string
}

func (e *InvalidTickerError) Error() string {
	return fmt.Sprintf("invalid ticker %q", e.Ticker)
}

// NoDataError reports that the data provider returned no bars for a ticker
// over the requested date range.
type NoDataError struct {
	Ticker string
	Start  string
	End    string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data for %s between %s and %s", e.Ticker, e.Start, e.End)
}

// InvalidSeriesError reports a malformed price series: non-positive or
// non-finite values, unordered dates, or mismatched lengths. The core rejects
// such series rather than repairing them.
type InvalidSeriesError struct {
	Ticker string
	Reason string
}

func (e *InvalidSeriesError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("invalid series %s: %s", e.Ticker, e.Reason)
	}
	return "invalid series: " + e.Reason
}
