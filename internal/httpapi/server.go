package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"tradelab/internal/backtest"
	"tradelab/internal/config"
	"tradelab/internal/domain"
	"tradelab/internal/marketdata"
	"tradelab/internal/store"
	"tradelab/internal/strategy"
	"tradelab/pkg/tradelab"
)

// Request bounds enforced by the API layer, tighter than what the engine
// itself would accept.
const (
	minInitialCapital = 1_000
	maxInitialCapital = 10_000_000
	minRangeDays      = 30
)

// Server serves the backtest HTTP API.
type Server struct {
	data     *marketdata.Service
	runs     store.RunStore // nil disables run history
	defaults config.Backtest
	version  string
	log      *slog.Logger
}

// NewServer creates a Server. A nil runs store disables the run-history
// endpoint and run recording.
func NewServer(data *marketdata.Service, runs store.RunStore, defaults config.Backtest, version string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		data:     data,
		runs:     runs,
		defaults: defaults,
		version:  version,
		log:      log.With("component", "httpapi"),
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/backtest", s.handleBacktest)
	mux.HandleFunc("GET /api/v1/strategies", s.handleStrategies)
	mux.HandleFunc("GET /api/v1/runs", s.handleRuns)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding JSON response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, errType, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(tradelab.ErrorResponse{Success: false, Error: errType, Message: msg})
}

// ---------------------------------------------------------------------------
// POST /api/v1/backtest
// ---------------------------------------------------------------------------

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req tradelab.BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidParameters", "malformed JSON body: "+err.Error())
		return
	}

	tickers, err := normalizeTickers(req)
	if err != nil {
		writeBacktestError(w, err)
		return
	}
	req.Tickers = tickers
	req.Ticker = ""

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidParameters", err.Error())
		return
	}

	capital := req.InitialCapital
	if capital == 0 {
		capital = s.defaults.InitialCapital
		req.InitialCapital = capital
	}
	if capital < minInitialCapital || capital > maxInitialCapital {
		writeError(w, http.StatusBadRequest, "InvalidCapital",
			fmt.Sprintf("initial_capital must be between %d and %d, got %g", minInitialCapital, maxInitialCapital, capital))
		return
	}

	riskFree := s.defaults.RiskFreeRate
	if req.RiskFreeRate != nil {
		riskFree = *req.RiskFreeRate
	}

	spec, err := buildSpec(req.StrategyName, req.StrategyParams)
	if err != nil {
		writeBacktestError(w, err)
		return
	}

	s.log.Info("backtest request",
		"tickers", tickers,
		"start", req.StartDate,
		"end", req.EndDate,
		"strategy", req.StrategyName,
		"capital", capital,
	)

	series, err := s.data.PriceSeriesMulti(r.Context(), tickers, start, end)
	if err != nil {
		writeBacktestError(w, err)
		return
	}

	stratResult, err := backtest.Aggregate(series, spec, capital, riskFree)
	if err != nil {
		writeBacktestError(w, err)
		return
	}
	baseResult, err := backtest.AggregateBuyAndHold(series, capital, riskFree)
	if err != nil {
		writeBacktestError(w, err)
		return
	}
	comparison := backtest.Compare(stratResult, baseResult)

	resp := tradelab.BacktestResponse{
		Request:         req,
		Scope:           string(stratResult.Scope),
		StrategyMetrics: metricsJSON(stratResult.Metrics),
		BaselineMetrics: metricsJSON(baseResult.Metrics),
		Comparison:      comparisonJSON(comparison),
		EquityCurve:     timeSeriesJSON(stratResult.Dates, stratResult.Values),
		BaselineCurve:   timeSeriesJSON(baseResult.Dates, baseResult.Values),
		PerTicker:       perTickerJSON(stratResult.PerTicker),
		Success:         true,
		Message:         "backtest completed successfully",
	}

	if s.runs != nil {
		id, err := s.runs.SaveRun(r.Context(), &store.Run{
			Strategy:       req.StrategyName,
			Tickers:        tickers,
			StartDate:      start,
			EndDate:        end,
			InitialCapital: capital,
			FinalValue:     stratResult.Metrics.FinalValue,
			TotalReturn:    stratResult.Metrics.TotalReturn,
			CAGR:           stratResult.Metrics.CAGR,
			SharpeRatio:    stratResult.Metrics.SharpeRatio,
			MaxDrawdown:    stratResult.Metrics.MaxDrawdown,
			NumTrades:      stratResult.Metrics.NumTrades,
			WinRate:        stratResult.Metrics.WinRate,
		})
		if err != nil {
			// Run history is best effort; the backtest result still stands.
			s.log.Warn("saving run failed", "err", err)
		} else {
			resp.RunID = id
		}
	}

	s.writeJSON(w, resp)
}

// normalizeTickers merges the singular and plural ticker fields, uppercases,
// validates, and deduplicates while preserving order.
func normalizeTickers(req tradelab.BacktestRequest) ([]string, error) {
	raw := req.Tickers
	if req.Ticker != "" {
		raw = append([]string{req.Ticker}, raw...)
	}
	if len(raw) == 0 {
		return nil, &domain.InvalidParametersError{Reason: "at least one ticker is required"}
	}

	seen := make(map[string]struct{}, len(raw))
	tickers := make([]string, 0, len(raw))
	for _, t := range raw {
		ticker, err := marketdata.NormalizeTicker(t)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}
		tickers = append(tickers, ticker)
	}
	if len(tickers) > backtest.MaxTickers {
		return nil, &domain.InvalidParametersError{
			Reason: fmt.Sprintf("at most %d distinct tickers allowed, got %d", backtest.MaxTickers, len(tickers)),
		}
	}
	return tickers, nil
}

// parseRange validates the requested date range: well-formed dates, start
// before end, a span of at least minRangeDays, and an end no later than
// today.
func parseRange(startStr, endStr string) (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", startStr)
	if err != nil {
		return start, end, fmt.Errorf("invalid start_date %q, use YYYY-MM-DD", startStr)
	}
	end, err = time.Parse("2006-01-02", endStr)
	if err != nil {
		return start, end, fmt.Errorf("invalid end_date %q, use YYYY-MM-DD", endStr)
	}
	if !start.Before(end) {
		return start, end, fmt.Errorf("start_date %s must be before end_date %s", startStr, endStr)
	}
	if end.Sub(start) < minRangeDays*24*time.Hour {
		return start, end, fmt.Errorf("date range must span at least %d days", minRangeDays)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if end.After(today) {
		return start, end, fmt.Errorf("end_date %s is in the future", endStr)
	}
	return start, end, nil
}

// buildSpec assembles and validates a strategy spec from the request.
func buildSpec(name string, p tradelab.StrategyParams) (strategy.Spec, error) {
	kind, err := strategy.ParseKind(name)
	if err != nil {
		return strategy.Spec{}, err
	}

	var spec strategy.Spec
	switch kind {
	case strategy.KindSMACrossover:
		if p.ShortWindow == nil {
			return spec, &domain.InvalidParametersError{Reason: "short_window is required for sma_crossover"}
		}
		if p.LongWindow == nil {
			return spec, &domain.InvalidParametersError{Reason: "long_window is required for sma_crossover"}
		}
		spec = strategy.SMACrossover(*p.ShortWindow, *p.LongWindow)
	case strategy.KindRSIMeanReversion:
		if p.Period == nil {
			return spec, &domain.InvalidParametersError{Reason: "period is required for rsi_mean_reversion"}
		}
		if p.BuyThreshold == nil {
			return spec, &domain.InvalidParametersError{Reason: "buy_threshold is required for rsi_mean_reversion"}
		}
		if p.SellThreshold == nil {
			return spec, &domain.InvalidParametersError{Reason: "sell_threshold is required for rsi_mean_reversion"}
		}
		spec = strategy.RSIMeanReversion(*p.Period, *p.BuyThreshold, *p.SellThreshold)
	}

	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}

// writeBacktestError maps domain errors to HTTP statuses: caller mistakes to
// 400, unknown tickers and empty data to 404, everything else to 500.
func writeBacktestError(w http.ResponseWriter, err error) {
	var (
		invalidParams *domain.InvalidParametersError
		insufficient  *domain.InsufficientDataError
		invalidCap    *domain.InvalidCapitalError
		invalidTicker *domain.InvalidTickerError
		noData        *domain.NoDataError
	)
	switch {
	case errors.As(err, &invalidParams):
		writeError(w, http.StatusBadRequest, "InvalidParameters", err.Error())
	case errors.As(err, &insufficient):
		writeError(w, http.StatusBadRequest, "InsufficientData", err.Error())
	case errors.As(err, &invalidCap):
		writeError(w, http.StatusBadRequest, "InvalidCapital", err.Error())
	case errors.As(err, &invalidTicker):
		writeError(w, http.StatusNotFound, "InvalidTicker", err.Error())
	case errors.As(err, &noData):
		writeError(w, http.StatusNotFound, "NoDataAvailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "BacktestError", err.Error())
	}
}

// ---------------------------------------------------------------------------
// GET /api/v1/strategies, /api/v1/runs, /api/v1/health
// ---------------------------------------------------------------------------

func (s *Server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, tradelab.StrategiesResponse{Strategies: strategiesJSON(strategy.Catalog())})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "RunHistoryDisabled", "run history storage is not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "InvalidParameters", "limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.log.Error("listing runs", "err", err)
		writeError(w, http.StatusInternalServerError, "StorageError", "failed to list runs")
		return
	}

	resp := tradelab.RunsResponse{Runs: make([]tradelab.Run, len(runs))}
	for i, run := range runs {
		resp.Runs[i] = runJSON(run)
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, tradelab.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
	})
}
