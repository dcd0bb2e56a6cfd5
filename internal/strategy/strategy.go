// Package strategy turns a daily price history into a daily long/flat
// position series under a chosen trading rule. Strategies form a closed set
// of variants; adding one means adding a Kind, its parameter fields, and a
// signal function, not a new type hierarchy.
package strategy

import (
	"fmt"

	"tradelab/internal/domain"
)

// Kind identifies a strategy variant.
type Kind string

// Supported strategy variants.
const (
	KindSMACrossover     Kind = "sma_crossover"
	KindRSIMeanReversion Kind = "rsi_mean_reversion"
)

// ParseKind maps a strategy name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindSMACrossover, KindRSIMeanReversion:
		return Kind(name), nil
	}
	return "", &domain.InvalidParametersError{
		Reason: fmt.Sprintf("unknown strategy %q, available: %s, %s", name, KindSMACrossover, KindRSIMeanReversion),
	}
}

// Spec is a strategy variant with its parameters. Only the fields for the
// selected Kind are meaningful.
type Spec struct {
	Kind Kind

	// SMA crossover.
	ShortWindow int
	LongWindow  int

	// RSI mean reversion.
	Period        int
	BuyThreshold  float64
	SellThreshold float64
}

// SMACrossover returns a Spec for the SMA crossover strategy.
func SMACrossover(short, long int) Spec {
	return Spec{Kind: KindSMACrossover, ShortWindow: short, LongWindow: long}
}

// RSIMeanReversion returns a Spec for the RSI mean-reversion strategy.
func RSIMeanReversion(period int, buy, sell float64) Spec {
	return Spec{Kind: KindRSIMeanReversion, Period: period, BuyThreshold: buy, SellThreshold: sell}
}

// Validate checks the parameters of the selected variant.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindSMACrossover:
		if s.ShortWindow <= 0 || s.LongWindow <= 0 {
			return &domain.InvalidParametersError{Reason: "window periods must be positive integers"}
		}
		if s.ShortWindow >= s.LongWindow {
			return &domain.InvalidParametersError{
				Reason: fmt.Sprintf("short_window (%d) must be less than long_window (%d)", s.ShortWindow, s.LongWindow),
			}
		}
	case KindRSIMeanReversion:
		if s.Period <= 0 {
			return &domain.InvalidParametersError{Reason: "period must be a positive integer"}
		}
		if s.BuyThreshold < 0 || s.BuyThreshold > 100 {
			return &domain.InvalidParametersError{Reason: "buy_threshold must be between 0 and 100"}
		}
		if s.SellThreshold < 0 || s.SellThreshold > 100 {
			return &domain.InvalidParametersError{Reason: "sell_threshold must be between 0 and 100"}
		}
		if s.BuyThreshold >= s.SellThreshold {
			return &domain.InvalidParametersError{
				Reason: fmt.Sprintf("buy_threshold (%g) must be less than sell_threshold (%g)", s.BuyThreshold, s.SellThreshold),
			}
		}
	default:
		return &domain.InvalidParametersError{Reason: fmt.Sprintf("unknown strategy kind %q", s.Kind)}
	}
	return nil
}

// MinBars returns the minimum price-history length the variant needs to
// produce any signal.
func (s Spec) MinBars() int {
	switch s.Kind {
	case KindSMACrossover:
		return s.LongWindow
	case KindRSIMeanReversion:
		return s.Period + 1
	}
	return 0
}

// Positions generates the daily position series for the price history. It
// validates parameters and history length, then dispatches to the variant's
// signal function. The returned series shares the price series' date index.
func (s Spec) Positions(prices *domain.PriceSeries) (*domain.PositionSeries, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if prices.Len() < s.MinBars() {
		return nil, &domain.InsufficientDataError{
			Need:    s.MinBars(),
			Got:     prices.Len(),
			Tickers: []string{prices.Ticker()},
		}
	}

	switch s.Kind {
	case KindSMACrossover:
		return smaCrossoverPositions(prices, s.ShortWindow, s.LongWindow)
	case KindRSIMeanReversion:
		return rsiMeanReversionPositions(prices, s.Period, s.BuyThreshold, s.SellThreshold)
	}
	return nil, &domain.InvalidParametersError{Reason: fmt.Sprintf("unknown strategy kind %q", s.Kind)}
}
