package strategy

import "tradelab/internal/domain"

// smaCrossoverPositions computes positions for the SMA crossover rule:
// long whenever the short-window rolling mean is above the long-window
// rolling mean, flat otherwise. Days before both windows are defined carry
// position 0 rather than propagating an undefined average forward.
//
// Both means are maintained incrementally (add newest, drop oldest) so the
// whole pass is linear in the series length.
func smaCrossoverPositions(prices *domain.PriceSeries, short, long int) (*domain.PositionSeries, error) {
	n := prices.Len()
	values := make([]int, n)

	var shortSum, longSum float64
	for i := 0; i < n; i++ {
		c := prices.Close(i)
		shortSum += c
		longSum += c
		if i >= short {
			shortSum -= prices.Close(i - short)
		}
		if i >= long {
			longSum -= prices.Close(i - long)
		}

		// Both windows are full from index long-1 onward (short < long).
		if i >= long-1 {
			if shortSum/float64(short) > longSum/float64(long) {
				values[i] = 1
			}
		}
	}

	return domain.NewPositionSeries(prices.Dates(), values)
}
