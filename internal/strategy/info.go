package strategy

// ParamInfo describes one tunable parameter of a strategy, for API clients
// that render a configuration form.
type ParamInfo struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Default     float64 `json:"default"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max,omitempty"`
	Description string  `json:"description"`
}

// Info describes a strategy variant.
type Info struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Params      []ParamInfo `json:"params"`
}

// Catalog returns descriptions of every available strategy, in a stable
// order.
func Catalog() []Info {
	return []Info{
		{
			Name:        string(KindSMACrossover),
			DisplayName: "SMA Crossover",
			Description: "Trend-following strategy that buys when the short-term moving average crosses above the long-term moving average, and sells on the opposite cross.",
			Type:        "trend_following",
			Params: []ParamInfo{
				{Name: "short_window", Type: "int", Default: 50, Min: 1, Description: "Period for the short-term moving average"},
				{Name: "long_window", Type: "int", Default: 200, Min: 2, Description: "Period for the long-term moving average"},
			},
		},
		{
			Name:        string(KindRSIMeanReversion),
			DisplayName: "RSI Mean Reversion",
			Description: "Counter-trend strategy that buys when RSI indicates oversold conditions and sells when overbought, expecting price to revert to its mean.",
			Type:        "mean_reversion",
			Params: []ParamInfo{
				{Name: "period", Type: "int", Default: 14, Min: 2, Max: 100, Description: "RSI calculation period"},
				{Name: "buy_threshold", Type: "float", Default: 30, Min: 0, Max: 100, Description: "RSI level to enter a long position (oversold)"},
				{Name: "sell_threshold", Type: "float", Default: 70, Min: 0, Max: 100, Description: "RSI level to exit the position (overbought)"},
			},
		},
	}
}
