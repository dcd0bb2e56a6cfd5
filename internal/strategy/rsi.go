package strategy

import "tradelab/internal/domain"

// rsiMeanReversionPositions computes positions for the RSI mean-reversion
// rule with hysteresis: enter long the first day RSI drops below the buy
// threshold, stay long until RSI reaches the sell threshold, otherwise hold
// yesterday's position. The position before any threshold crossing is 0.
func rsiMeanReversionPositions(prices *domain.PriceSeries, period int, buy, sell float64) (*domain.PositionSeries, error) {
	n := prices.Len()
	values := make([]int, n)
	rsi := wilderRSI(prices, period)

	pos := 0
	for i := 0; i < n; i++ {
		if i >= period {
			switch {
			case rsi[i] < buy:
				pos = 1
			case rsi[i] >= sell:
				pos = 0
			}
		}
		values[i] = pos
	}

	return domain.NewPositionSeries(prices.Dates(), values)
}

// wilderRSI computes the Relative Strength Index using Wilder's smoothing:
// average gain and loss are seeded with a simple mean over the first
// `period` deltas, then updated with
//
//	avg = (avg*(period-1) + delta) / period
//
// RSI values are defined from index `period` onward; earlier entries are
// left as zero and must be gated by the caller.
func wilderRSI(prices *domain.PriceSeries, period int) []float64 {
	n := prices.Len()
	rsi := make([]float64, n)

	var avgGain, avgLoss float64

	// Seed with a simple average of the first `period` deltas.
	for i := 1; i <= period; i++ {
		delta := prices.Close(i) - prices.Close(i-1)
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss += -delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	rsi[period] = rsiFromAverages(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < n; i++ {
		delta := prices.Close(i) - prices.Close(i-1)
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		rsi[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return rsi
}

// rsiFromAverages applies RSI = 100 - 100/(1+RS) with the degenerate cases
// pinned: 100 when there were gains but no losses, 50 when the price never
// moved at all.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain > 0 {
			return 100
		}
		return 50
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
