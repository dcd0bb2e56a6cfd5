package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tradelab/internal/config"
	"tradelab/internal/domain"
	"tradelab/internal/marketdata"
	"tradelab/internal/store"
	"tradelab/pkg/tradelab"
)

// stubSource serves synthetic rising daily bars for a fixed symbol set.
type stubSource struct {
	symbols map[string]bool
}

func (s *stubSource) Bars(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	if !s.symbols[symbol] {
		return nil, nil
	}
	var bars []domain.Bar
	price := 100.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		bars = append(bars, domain.Bar{
			Symbol:    symbol,
			Timestamp: d,
			Open:      price, High: price, Low: price, Close: price,
			Volume: 1000,
		})
		price *= 1.002
	}
	return bars, nil
}

func newTestServer(t *testing.T, withRuns bool) *Server {
	t.Helper()

	src := &stubSource{symbols: map[string]bool{"AAPL": true, "MSFT": true}}
	data := marketdata.NewService(src, nil, nil)

	var runs store.RunStore
	if withRuns {
		s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
		if err != nil {
			t.Fatalf("NewSQLiteStore: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		runs = s
	}

	defaults := config.Backtest{InitialCapital: 10000}
	return NewServer(data, runs, defaults, "test", nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func validRequest() tradelab.BacktestRequest {
	return tradelab.BacktestRequest{
		Tickers:        []string{"AAPL"},
		StartDate:      "2024-01-02",
		EndDate:        "2024-02-15",
		InitialCapital: 10000,
		StrategyName:   "sma_crossover",
		StrategyParams: tradelab.StrategyParams{ShortWindow: intp(2), LongWindow: intp(5)},
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestServer(t, false).Handler()
	rec := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp tradelab.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %q, want %q", resp.Status, "healthy")
	}
	if resp.Version != "test" {
		t.Errorf("Version = %q, want %q", resp.Version, "test")
	}
}

func TestHandleStrategies(t *testing.T) {
	h := newTestServer(t, false).Handler()
	rec := doJSON(t, h, http.MethodGet, "/api/v1/strategies", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp tradelab.StrategiesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Strategies) != 2 {
		t.Fatalf("len(Strategies) = %d, want 2", len(resp.Strategies))
	}
	names := map[string]bool{}
	for _, s := range resp.Strategies {
		names[s.Name] = true
	}
	if !names["sma_crossover"] || !names["rsi_mean_reversion"] {
		t.Errorf("strategy names = %v, want sma_crossover and rsi_mean_reversion", names)
	}
}

func TestHandleBacktest(t *testing.T) {
	h := newTestServer(t, true).Handler()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/backtest", validRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp tradelab.BacktestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Errorf("Success = false, message: %s", resp.Message)
	}
	if resp.Scope != "single_ticker" {
		t.Errorf("Scope = %q, want %q", resp.Scope, "single_ticker")
	}
	if len(resp.EquityCurve.Dates) == 0 {
		t.Fatal("EquityCurve is empty")
	}
	if len(resp.EquityCurve.Dates) != len(resp.EquityCurve.Values) {
		t.Errorf("EquityCurve dates/values length mismatch: %d vs %d",
			len(resp.EquityCurve.Dates), len(resp.EquityCurve.Values))
	}
	if len(resp.BaselineCurve.Values) != len(resp.EquityCurve.Values) {
		t.Errorf("curve lengths differ: baseline %d, strategy %d",
			len(resp.BaselineCurve.Values), len(resp.EquityCurve.Values))
	}
	if resp.EquityCurve.Values[0] != 10000 {
		t.Errorf("EquityCurve.Values[0] = %v, want 10000", resp.EquityCurve.Values[0])
	}
	// Monotonically rising prices: buy and hold wins or ties, never has a
	// negative return.
	if resp.BaselineMetrics.TotalReturn <= 0 {
		t.Errorf("BaselineMetrics.TotalReturn = %v, want > 0", resp.BaselineMetrics.TotalReturn)
	}
	if resp.RunID == 0 {
		t.Error("RunID = 0, want a recorded run")
	}

	// The recorded run shows up in the history endpoint.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/runs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("runs status = %d, want 200", rec.Code)
	}
	var runs tradelab.RunsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decoding runs response: %v", err)
	}
	if len(runs.Runs) != 1 {
		t.Fatalf("len(Runs) = %d, want 1", len(runs.Runs))
	}
	if runs.Runs[0].Strategy != "sma_crossover" {
		t.Errorf("run Strategy = %q, want %q", runs.Runs[0].Strategy, "sma_crossover")
	}
}

func TestHandleBacktestPortfolio(t *testing.T) {
	h := newTestServer(t, false).Handler()

	req := validRequest()
	req.Tickers = []string{"aapl", "MSFT", "AAPL"} // dedupes to [AAPL MSFT]
	rec := doJSON(t, h, http.MethodPost, "/api/v1/backtest", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp tradelab.BacktestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Scope != "portfolio" {
		t.Errorf("Scope = %q, want %q", resp.Scope, "portfolio")
	}
	if len(resp.Request.Tickers) != 2 {
		t.Errorf("normalized tickers = %v, want [AAPL MSFT]", resp.Request.Tickers)
	}
	if len(resp.PerTicker) != 2 {
		t.Errorf("len(PerTicker) = %d, want 2", len(resp.PerTicker))
	}
}

func TestHandleBacktestValidation(t *testing.T) {
	h := newTestServer(t, false).Handler()

	tests := []struct {
		name       string
		mutate     func(*tradelab.BacktestRequest)
		wantStatus int
		wantError  string
	}{
		{
			"no tickers",
			func(r *tradelab.BacktestRequest) { r.Tickers = nil },
			http.StatusBadRequest, "InvalidParameters",
		},
		{
			"malformed ticker",
			func(r *tradelab.BacktestRequest) { r.Tickers = []string{"123"} },
			http.StatusNotFound, "InvalidTicker",
		},
		{
			"too many tickers",
			func(r *tradelab.BacktestRequest) {
				r.Tickers = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
			},
			http.StatusBadRequest, "InvalidParameters",
		},
		{
			"bad date format",
			func(r *tradelab.BacktestRequest) { r.StartDate = "01/02/2024" },
			http.StatusBadRequest, "InvalidParameters",
		},
		{
			"start after end",
			func(r *tradelab.BacktestRequest) { r.StartDate, r.EndDate = r.EndDate, r.StartDate },
			http.StatusBadRequest, "InvalidParameters",
		},
		{
			"range too short",
			func(r *tradelab.BacktestRequest) { r.EndDate = "2024-01-10" },
			http.StatusBadRequest, "InvalidParameters",
		},
		{
			"end in the future",
			func(r *tradelab.BacktestRequest) { r.EndDate = time.Now().UTC().AddDate(1, 0, 0).Format("2006-01-02") },
			http.StatusBadRequest, "InvalidParameters",
		},
		{
			"capital too small",
			func(r *tradelab.BacktestRequest) { r.InitialCapital = 500 },
			http.StatusBadRequest, "InvalidCapital",
		},
		{
			"capital too large",
			func(r *tradelab.BacktestRequest) { r.InitialCapital = 20_000_000 },
			http.StatusBadRequest, "InvalidCapital",
		},
		{
			"unknown strategy",
			func(r *tradelab.BacktestRequest) { r.StrategyName = "momentum" },
			http.StatusBadRequest, "InvalidParameters",
		},
		{
			"missing sma params",
			func(r *tradelab.BacktestRequest) { r.StrategyParams = tradelab.StrategyParams{} },
			http.StatusBadRequest, "InvalidParameters",
		},
		{
			"short window not below long",
			func(r *tradelab.BacktestRequest) {
				r.StrategyParams = tradelab.StrategyParams{ShortWindow: intp(10), LongWindow: intp(10)}
			},
			http.StatusBadRequest, "InvalidParameters",
		},
		{
			"missing rsi params",
			func(r *tradelab.BacktestRequest) {
				r.StrategyName = "rsi_mean_reversion"
				r.StrategyParams = tradelab.StrategyParams{Period: intp(14)}
			},
			http.StatusBadRequest, "InvalidParameters",
		},
		{
			"unknown ticker",
			func(r *tradelab.BacktestRequest) { r.Tickers = []string{"ZZZZ"} },
			http.StatusNotFound, "NoDataAvailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			rec := doJSON(t, h, http.MethodPost, "/api/v1/backtest", req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var resp tradelab.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Success {
				t.Error("Success = true in error response")
			}
			if resp.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestHandleBacktestRSI(t *testing.T) {
	h := newTestServer(t, false).Handler()

	req := validRequest()
	req.StrategyName = "rsi_mean_reversion"
	req.StrategyParams = tradelab.StrategyParams{
		Period:        intp(14),
		BuyThreshold:  floatp(30),
		SellThreshold: floatp(70),
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/backtest", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp tradelab.BacktestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	// A steadily rising series never dips oversold, so the strategy stays
	// flat: zero trades and a null win rate.
	if resp.StrategyMetrics.NumTrades != 0 {
		t.Errorf("NumTrades = %d, want 0", resp.StrategyMetrics.NumTrades)
	}
	if resp.StrategyMetrics.WinRate != nil {
		t.Errorf("WinRate = %v, want null", *resp.StrategyMetrics.WinRate)
	}
}

func TestHandleBacktestRiskFreeDefault(t *testing.T) {
	h := newTestServer(t, false).Handler()

	run := func(rate *float64) tradelab.Metrics {
		req := validRequest()
		req.RiskFreeRate = rate
		rec := doJSON(t, h, http.MethodPost, "/api/v1/backtest", req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var resp tradelab.BacktestResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		return resp.StrategyMetrics
	}

	// Omitting risk_free_rate must behave exactly like sending zero.
	omitted := run(nil)
	explicitZero := run(floatp(0))
	if omitted.SharpeRatio == nil || explicitZero.SharpeRatio == nil {
		t.Fatal("SharpeRatio is null for a strategy with varying returns")
	}
	if *omitted.SharpeRatio != *explicitZero.SharpeRatio {
		t.Errorf("Sharpe with omitted rate = %v, with explicit 0 = %v; default is not zero",
			*omitted.SharpeRatio, *explicitZero.SharpeRatio)
	}

	// A positive rate still flows through when the caller asks for it.
	raised := run(floatp(0.05))
	if raised.SharpeRatio == nil || *raised.SharpeRatio >= *omitted.SharpeRatio {
		t.Errorf("Sharpe with rate 0.05 = %v, want below default %v", raised.SharpeRatio, *omitted.SharpeRatio)
	}
}

func TestHandleRunsLimitValidation(t *testing.T) {
	h := newTestServer(t, true).Handler()

	for _, limit := range []string{"0", "101", "abc"} {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/runs?limit="+limit, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestHandleRunsDisabled(t *testing.T) {
	h := newTestServer(t, false).Handler()
	rec := doJSON(t, h, http.MethodGet, "/api/v1/runs", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestWriteJSONEncodeFailureUsesServerLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	s := NewServer(nil, nil, config.Backtest{}, "test", log)

	rec := httptest.NewRecorder()
	s.writeJSON(rec, math.Inf(1)) // +Inf is not representable in JSON

	if !strings.Contains(buf.String(), `"component":"httpapi"`) {
		t.Errorf("encode failure log %q missing the httpapi component attribute", buf.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, false).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/backtest", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
