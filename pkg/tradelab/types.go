package tradelab

// Wire types for the tradelab-server REST API, shared between the server
// and this client so external consumers can build requests and read
// responses without touching server internals.

// StrategyParams carries the per-variant strategy parameters. Only the
// fields for the selected strategy need to be set.
type StrategyParams struct {
	ShortWindow   *int     `json:"short_window,omitempty"`
	LongWindow    *int     `json:"long_window,omitempty"`
	Period        *int     `json:"period,omitempty"`
	BuyThreshold  *float64 `json:"buy_threshold,omitempty"`
	SellThreshold *float64 `json:"sell_threshold,omitempty"`
}

// BacktestRequest is the request body for POST /api/v1/backtest. Ticker and
// Tickers are alternatives; a single-ticker caller can send either.
type BacktestRequest struct {
	Ticker         string         `json:"ticker,omitempty"`
	Tickers        []string       `json:"tickers,omitempty"`
	StartDate      string         `json:"start_date"`
	EndDate        string         `json:"end_date"`
	InitialCapital float64        `json:"initial_capital"`
	RiskFreeRate   *float64       `json:"risk_free_rate,omitempty"`
	StrategyName   string         `json:"strategy_name"`
	StrategyParams StrategyParams `json:"strategy_params"`
}

// Metrics is the wire form of a metric set. Metrics that cannot be computed
// are nil and serialize as null, with "n/a" for their percent strings.
type Metrics struct {
	TotalReturn    float64  `json:"total_return"`
	TotalReturnPct string   `json:"total_return_pct"`
	CAGR           *float64 `json:"cagr"`
	CAGRPct        string   `json:"cagr_pct"`
	SharpeRatio    *float64 `json:"sharpe_ratio"`
	MaxDrawdown    float64  `json:"max_drawdown"`
	MaxDrawdownPct string   `json:"max_drawdown_pct"`
	NumTrades      int      `json:"num_trades"`
	WinRate        *float64 `json:"win_rate"`
	InitialCapital float64  `json:"initial_capital"`
	FinalValue     float64  `json:"final_value"`
	DaysInMarket   int      `json:"days_in_market"`
	TotalDays      int      `json:"total_days"`
}

// TickerStats is the per-ticker breakdown for portfolio backtests.
type TickerStats struct {
	Ticker       string `json:"ticker"`
	TradeCount   int    `json:"trade_count"`
	DaysInMarket int    `json:"days_in_market"`
}

// TimeSeries carries parallel date and value arrays for equity curves.
type TimeSeries struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

// Comparison summarizes strategy vs benchmark.
type Comparison struct {
	ExcessReturn     float64  `json:"excess_return"`
	ExcessReturnPct  string   `json:"excess_return_pct"`
	ExcessCAGR       *float64 `json:"excess_cagr"`
	SharpeDifference *float64 `json:"sharpe_difference"`
	Outperformed     bool     `json:"outperformed"`
}

// BacktestResponse is the complete response for POST /api/v1/backtest.
type BacktestResponse struct {
	Request         BacktestRequest `json:"request"`
	Scope           string          `json:"scope"`
	StrategyMetrics Metrics         `json:"strategy_metrics"`
	BaselineMetrics Metrics         `json:"baseline_metrics"`
	Comparison      Comparison      `json:"comparison"`
	EquityCurve     TimeSeries      `json:"equity_curve"`
	BaselineCurve   TimeSeries      `json:"baseline_curve"`
	PerTicker       []TickerStats   `json:"per_ticker,omitempty"`
	RunID           int64           `json:"run_id,omitempty"`
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
}

// ParamInfo describes one tunable parameter of a strategy.
type ParamInfo struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Default     float64 `json:"default"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max,omitempty"`
	Description string  `json:"description"`
}

// StrategyInfo describes a strategy variant served by the catalog endpoint.
type StrategyInfo struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Params      []ParamInfo `json:"params"`
}

// StrategiesResponse lists the available strategies.
type StrategiesResponse struct {
	Strategies []StrategyInfo `json:"strategies"`
}

// Run is one recorded backtest run.
type Run struct {
	ID             int64    `json:"id"`
	CreatedAt      string   `json:"created_at"`
	Strategy       string   `json:"strategy"`
	Tickers        []string `json:"tickers"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	InitialCapital float64  `json:"initial_capital"`
	FinalValue     float64  `json:"final_value"`
	TotalReturn    float64  `json:"total_return"`
	CAGR           *float64 `json:"cagr"`
	SharpeRatio    *float64 `json:"sharpe_ratio"`
	MaxDrawdown    float64  `json:"max_drawdown"`
	NumTrades      int      `json:"num_trades"`
	WinRate        *float64 `json:"win_rate"`
}

// RunsResponse lists recent backtest runs.
type RunsResponse struct {
	Runs []Run `json:"runs"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ErrorResponse is the error body for all non-2xx responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
