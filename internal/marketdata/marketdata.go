// Package marketdata turns provider bar data into validated price series,
// with a local cache in front of the provider so repeated backtests over the
// same range stay offline.
package marketdata

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"tradelab/internal/domain"
	"tradelab/internal/store"
)

// Source fetches daily bars for one symbol over a date range.
type Source interface {
	Bars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)
}

// symbolPattern accepts US equity symbols: leading letter, then letters,
// digits, dots, or dashes, ten characters at most.
var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// NormalizeTicker uppercases and trims a ticker symbol, rejecting anything
// that does not look like a US equity symbol.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if !symbolPattern.MatchString(ticker) {
		return "", &domain.InvalidTickerError{Ticker: raw}
	}
	return ticker, nil
}

// Service loads price series for backtests. Bars come from the cache when it
// already covers the requested range, otherwise from the source with a
// write-through to the cache.
type Service struct {
	source Source
	cache  store.BarStore // nil disables caching
	log    *slog.Logger
}

// NewService creates a Service over the given source. A nil cache disables
// bar caching.
func NewService(source Source, cache store.BarStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		source: source,
		cache:  cache,
		log:    log.With("component", "marketdata"),
	}
}

// PriceSeries returns the daily closing-price series for ticker within
// [start, end]. The ticker is normalized first; a provider response with no
// bars is a NoDataError.
func (s *Service) PriceSeries(ctx context.Context, ticker string, start, end time.Time) (*domain.PriceSeries, error) {
	ticker, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	bars, err := s.bars(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, &domain.NoDataError{
			Ticker: ticker,
			Start:  start.Format("2006-01-02"),
			End:    end.Format("2006-01-02"),
		}
	}

	return seriesFromBars(ticker, bars)
}

// PriceSeriesMulti loads one series per ticker. The first failing ticker
// aborts the load.
func (s *Service) PriceSeriesMulti(ctx context.Context, tickers []string, start, end time.Time) (map[string]*domain.PriceSeries, error) {
	out := make(map[string]*domain.PriceSeries, len(tickers))
	for _, t := range tickers {
		series, err := s.PriceSeries(ctx, t, start, end)
		if err != nil {
			return nil, err
		}
		out[series.Ticker()] = series
	}
	return out, nil
}

// coverageSlack tolerates weekends, holidays, and the not-yet-closed current
// day when judging whether cached bars span a requested range.
const coverageSlack = 5 * 24 * time.Hour

func (s *Service) bars(ctx context.Context, ticker string, start, end time.Time) ([]domain.Bar, error) {
	if s.cache != nil {
		cached, err := s.cache.ReadBars(ctx, ticker, string(domain.MarketUS), start, end)
		if err == nil && covers(cached, start, end) {
			s.log.Debug("cache hit", "ticker", ticker, "bars", len(cached))
			return cached, nil
		}
	}

	bars, err := s.source.Bars(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(bars) > 0 {
		if err := s.cache.WriteBars(ctx, bars); err != nil {
			// The fetched bars are still usable; a cache write failure is
			// not fatal to the backtest.
			s.log.Warn("bar cache write failed", "ticker", ticker, "err", err)
		}
	}
	return bars, nil
}

// covers reports whether cached bars plausibly span [start, end], allowing
// slack at both edges for non-trading days.
func covers(bars []domain.Bar, start, end time.Time) bool {
	if len(bars) == 0 {
		return false
	}
	first, last := bars[0].Timestamp, bars[len(bars)-1].Timestamp
	return !first.After(start.Add(coverageSlack)) && !last.Before(end.Add(-coverageSlack))
}

// seriesFromBars converts bars to a validated close-price series. Bars are
// sorted and deduplicated by calendar day; timestamps collapse to midnight
// UTC so calendar intersection across tickers compares equal dates.
func seriesFromBars(ticker string, bars []domain.Bar) (*domain.PriceSeries, error) {
	sorted := append([]domain.Bar(nil), bars...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	dates := make([]time.Time, 0, len(sorted))
	closes := make([]float64, 0, len(sorted))
	for _, b := range sorted {
		day := time.Date(b.Timestamp.Year(), b.Timestamp.Month(), b.Timestamp.Day(), 0, 0, 0, 0, time.UTC)
		if n := len(dates); n > 0 && dates[n-1].Equal(day) {
			closes[n-1] = b.Close
			continue
		}
		dates = append(dates, day)
		closes = append(closes, b.Close)
	}

	return domain.NewPriceSeries(ticker, dates, closes)
}
