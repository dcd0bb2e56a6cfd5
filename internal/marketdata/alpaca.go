package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"tradelab/internal/domain"
	"tradelab/internal/util"
)

// Compile-time interface check.
var _ Source = (*AlpacaSource)(nil)

// AlpacaSource fetches daily bars from the Alpaca market-data API, with a
// client-side rate limit and retries on transient failures.
type AlpacaSource struct {
	client     *marketdata.Client
	feed       marketdata.Feed
	limiter    *util.RateLimiter
	maxRetries int
}

// AlpacaOpts configures an AlpacaSource.
type AlpacaOpts struct {
	APIKey          string
	APISecret       string
	DataURL         string
	Feed            string // "iex" or "sip"
	RateLimitPerMin int
	MaxRetries      int
}

// NewAlpacaSource creates an AlpacaSource with the given credentials and
// limits.
func NewAlpacaSource(opts AlpacaOpts) *AlpacaSource {
	clientOpts := marketdata.ClientOpts{
		APIKey:    opts.APIKey,
		APISecret: opts.APISecret,
	}
	if opts.DataURL != "" {
		clientOpts.BaseURL = opts.DataURL
	}

	feed := marketdata.Feed(opts.Feed)
	if feed == "" {
		feed = marketdata.IEX
	}
	perMin := opts.RateLimitPerMin
	if perMin <= 0 {
		perMin = 200
	}
	retries := opts.MaxRetries
	if retries <= 0 {
		retries = 3
	}

	return &AlpacaSource{
		client:     marketdata.NewClient(clientOpts),
		feed:       feed,
		limiter:    util.NewRateLimiter(perMin),
		maxRetries: retries,
	}
}

// Bars fetches split-adjusted daily bars for one symbol within [start, end].
func (a *AlpacaSource) Bars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var alpacaBars []marketdata.Bar
	err := util.Retry(ctx, a.maxRetries, time.Second, func() error {
		var err error
		alpacaBars, err = a.client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame:  marketdata.OneDay,
			Start:      start,
			End:        end,
			Adjustment: marketdata.Split,
			Feed:       a.feed,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, domain.Bar{
			Symbol:     symbol,
			Timestamp:  ab.Timestamp,
			Open:       ab.Open,
			High:       ab.High,
			Low:        ab.Low,
			Close:      ab.Close,
			Volume:     int64(ab.Volume),
			TradeCount: int64(ab.TradeCount),
			VWAP:       ab.VWAP,
		})
	}
	return bars, nil
}
