package strategy

import (
	"errors"
	"testing"
	"time"

	"tradelab/internal/domain"
)

func priceSeries(t *testing.T, closes []float64) *domain.PriceSeries {
	t.Helper()
	dates := make([]time.Time, len(closes))
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = d
		d = d.AddDate(0, 0, 1)
	}
	s, err := domain.NewPriceSeries("TEST", dates, closes)
	if err != nil {
		t.Fatalf("NewPriceSeries: %v", err)
	}
	return s
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"sma_crossover", "rsi_mean_reversion"} {
		k, err := ParseKind(name)
		if err != nil {
			t.Errorf("ParseKind(%q): %v", name, err)
		}
		if string(k) != name {
			t.Errorf("ParseKind(%q) = %q", name, k)
		}
	}

	_, err := ParseKind("momentum")
	var perr *domain.InvalidParametersError
	if !errors.As(err, &perr) {
		t.Errorf("ParseKind(momentum) error = %v, want *InvalidParametersError", err)
	}
}

func TestSMACrossoverPositions(t *testing.T) {
	prices := priceSeries(t, []float64{1, 2, 3, 2, 1, 2})

	pos, err := SMACrossover(2, 3).Positions(prices)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}

	// Hand-computed: SMA2 vs SMA3 is undefined before index 2, above at
	// indices 2-3, below at 4-5.
	want := []int{0, 0, 1, 1, 0, 0}
	got := pos.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position[%d] = %d, want %d (all: %v)", i, got[i], want[i], got)
		}
	}
	if !pos.AlignedWith(prices) {
		t.Error("positions not aligned with price series")
	}
}

func TestSMACrossoverParameterValidation(t *testing.T) {
	prices := priceSeries(t, []float64{1, 2, 3, 4, 5})

	tests := []struct {
		name        string
		short, long int
	}{
		{"short equals long", 3, 3},
		{"short above long", 5, 3},
		{"zero short", 0, 3},
		{"negative long", 2, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SMACrossover(tt.short, tt.long).Positions(prices)
			var perr *domain.InvalidParametersError
			if !errors.As(err, &perr) {
				t.Errorf("error = %v, want *InvalidParametersError", err)
			}
		})
	}
}

func TestSMACrossoverInsufficientData(t *testing.T) {
	prices := priceSeries(t, []float64{1, 2, 3})

	_, err := SMACrossover(2, 5).Positions(prices)
	var derr *domain.InsufficientDataError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *InsufficientDataError", err)
	}
	if derr.Need != 5 || derr.Got != 3 {
		t.Errorf("InsufficientDataError = need %d got %d, want need 5 got 3", derr.Need, derr.Got)
	}
}

func TestRSIMeanReversionHysteresis(t *testing.T) {
	// Decline long enough to push RSI to 0 (enter), then a steady rise:
	// the position holds through the neutral band and exits once RSI
	// crosses the sell threshold.
	prices := priceSeries(t, []float64{10, 9, 8, 7, 8, 9, 10, 11, 12, 13})

	pos, err := RSIMeanReversion(2, 30, 70).Positions(prices)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}

	want := []int{0, 0, 1, 1, 1, 0, 0, 0, 0, 0}
	got := pos.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position[%d] = %d, want %d (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestRSIMeanReversionNeverEntersOnRally(t *testing.T) {
	// Strictly rising prices keep RSI at 100; the strategy never enters.
	prices := priceSeries(t, []float64{1, 2, 3, 4, 5, 6, 7, 8})

	pos, err := RSIMeanReversion(3, 30, 70).Positions(prices)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	for i, v := range pos.Values() {
		if v != 0 {
			t.Errorf("position[%d] = %d, want 0", i, v)
		}
	}
}

func TestRSIMeanReversionFlatMarket(t *testing.T) {
	// No movement at all: RSI pins to 50, inside the hysteresis band, so
	// the initial flat position is held for the whole window.
	prices := priceSeries(t, []float64{5, 5, 5, 5, 5, 5})

	pos, err := RSIMeanReversion(2, 30, 70).Positions(prices)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	for i, v := range pos.Values() {
		if v != 0 {
			t.Errorf("position[%d] = %d, want 0", i, v)
		}
	}
}

func TestWilderRSIEdgeValues(t *testing.T) {
	rising := priceSeries(t, []float64{1, 2, 3, 4, 5})
	rsi := wilderRSI(rising, 2)
	for i := 2; i < rising.Len(); i++ {
		if rsi[i] != 100 {
			t.Errorf("rsi[%d] = %v for all-gain series, want 100", i, rsi[i])
		}
	}

	flat := priceSeries(t, []float64{3, 3, 3, 3})
	rsi = wilderRSI(flat, 2)
	for i := 2; i < flat.Len(); i++ {
		if rsi[i] != 50 {
			t.Errorf("rsi[%d] = %v for flat series, want 50", i, rsi[i])
		}
	}

	falling := priceSeries(t, []float64{5, 4, 3, 2, 1})
	rsi = wilderRSI(falling, 2)
	for i := 2; i < falling.Len(); i++ {
		if rsi[i] != 0 {
			t.Errorf("rsi[%d] = %v for all-loss series, want 0", i, rsi[i])
		}
	}
}

func TestRSIParameterValidation(t *testing.T) {
	prices := priceSeries(t, []float64{1, 2, 3, 4, 5, 6})

	tests := []struct {
		name      string
		period    int
		buy, sell float64
	}{
		{"zero period", 0, 30, 70},
		{"buy below range", 14, -1, 70},
		{"sell above range", 14, 30, 101},
		{"buy equals sell", 14, 50, 50},
		{"buy above sell", 14, 70, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RSIMeanReversion(tt.period, tt.buy, tt.sell).Positions(prices)
			var perr *domain.InvalidParametersError
			if !errors.As(err, &perr) {
				t.Errorf("error = %v, want *InvalidParametersError", err)
			}
		})
	}
}

func TestRSIInsufficientData(t *testing.T) {
	prices := priceSeries(t, []float64{1, 2, 3})

	_, err := RSIMeanReversion(3, 30, 70).Positions(prices)
	var derr *domain.InsufficientDataError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *InsufficientDataError", err)
	}
	if derr.Need != 4 {
		t.Errorf("Need = %d, want period+1 = 4", derr.Need)
	}
}

func TestCatalog(t *testing.T) {
	infos := Catalog()
	if len(infos) != 2 {
		t.Fatalf("Catalog returned %d strategies, want 2", len(infos))
	}
	if infos[0].Name != string(KindSMACrossover) {
		t.Errorf("first catalog entry = %q, want %q", infos[0].Name, KindSMACrossover)
	}
	if infos[1].Name != string(KindRSIMeanReversion) {
		t.Errorf("second catalog entry = %q, want %q", infos[1].Name, KindRSIMeanReversion)
	}
	for _, info := range infos {
		if _, err := ParseKind(info.Name); err != nil {
			t.Errorf("catalog entry %q is not parseable: %v", info.Name, err)
		}
		if len(info.Params) == 0 {
			t.Errorf("catalog entry %q has no params", info.Name)
		}
	}
}
