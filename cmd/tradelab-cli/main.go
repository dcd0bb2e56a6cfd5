package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"tradelab/pkg/tradelab"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tradelab-cli <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  backtest    Run a backtest and print the report\n")
		fmt.Fprintf(os.Stderr, "  strategies  List available strategies\n")
		fmt.Fprintf(os.Stderr, "  runs        Show recent backtest runs\n")
		fmt.Fprintf(os.Stderr, "  version     Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("tradelab-cli %s\n", version)

	case "backtest":
		err = cmdBacktest(os.Args[2:])

	case "strategies":
		err = cmdStrategies(os.Args[2:])

	case "runs":
		err = cmdRuns(os.Args[2:])

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serverFlag(fs *flag.FlagSet) *string {
	def := os.Getenv("TRADELAB_SERVER")
	if def == "" {
		def = "http://localhost:8000"
	}
	return fs.String("server", def, "tradelab-server base URL")
}

func cmdBacktest(args []string) error {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	server := serverFlag(fs)
	tickers := fs.String("tickers", "", "comma-separated ticker symbols (required)")
	start := fs.String("start", "", "start date YYYY-MM-DD (required)")
	end := fs.String("end", "", "end date YYYY-MM-DD (required)")
	capital := fs.Float64("capital", 10000, "initial capital")
	strategyName := fs.String("strategy", "sma_crossover", "strategy name")
	short := fs.Int("short", 50, "SMA short window")
	long := fs.Int("long", 200, "SMA long window")
	period := fs.Int("period", 14, "RSI period")
	buy := fs.Float64("buy", 30, "RSI buy threshold")
	sell := fs.Float64("sell", 70, "RSI sell threshold")
	fs.Parse(args)

	if *tickers == "" || *start == "" || *end == "" {
		fs.Usage()
		return fmt.Errorf("tickers, start, and end are required")
	}

	req := tradelab.BacktestRequest{
		Tickers:        strings.Split(*tickers, ","),
		StartDate:      *start,
		EndDate:        *end,
		InitialCapital: *capital,
		StrategyName:   *strategyName,
	}
	switch *strategyName {
	case "sma_crossover":
		req.StrategyParams = tradelab.StrategyParams{ShortWindow: short, LongWindow: long}
	case "rsi_mean_reversion":
		req.StrategyParams = tradelab.StrategyParams{Period: period, BuyThreshold: buy, SellThreshold: sell}
	}

	resp, err := tradelab.NewClient(*server).Backtest(context.Background(), req)
	if err != nil {
		return err
	}

	printReport(resp)
	return nil
}

func cmdStrategies(args []string) error {
	fs := flag.NewFlagSet("strategies", flag.ExitOnError)
	server := serverFlag(fs)
	fs.Parse(args)

	resp, err := tradelab.NewClient(*server).Strategies(context.Background())
	if err != nil {
		return err
	}

	for _, s := range resp.Strategies {
		fmt.Printf("%s (%s)\n", s.Name, s.DisplayName)
		fmt.Printf("  %s\n", s.Description)
		for _, p := range s.Params {
			fmt.Printf("  -%-16s %s (%s, default %g)\n", p.Name, p.Description, p.Type, p.Default)
		}
		fmt.Println()
	}
	return nil
}

func cmdRuns(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	server := serverFlag(fs)
	limit := fs.Int("limit", 20, "maximum runs to show")
	fs.Parse(args)

	resp, err := tradelab.NewClient(*server).Runs(context.Background(), *limit)
	if err != nil {
		return err
	}

	if len(resp.Runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	fmt.Printf("%-5s %-20s %-20s %-24s %12s %8s\n", "ID", "CREATED", "STRATEGY", "TICKERS", "RETURN", "TRADES")
	for _, r := range resp.Runs {
		fmt.Printf("%-5d %-20s %-20s %-24s %11.2f%% %8d\n",
			r.ID,
			r.CreatedAt,
			r.Strategy,
			strings.Join(r.Tickers, ","),
			r.TotalReturn*100,
			r.NumTrades,
		)
	}
	return nil
}

func printReport(resp *tradelab.BacktestResponse) {
	fmt.Printf("Backtest: %s on %s (%s to %s)\n",
		resp.Request.StrategyName,
		strings.Join(resp.Request.Tickers, ","),
		resp.Request.StartDate,
		resp.Request.EndDate,
	)
	fmt.Println()

	fmt.Printf("%-16s %14s %14s\n", "", "STRATEGY", "BUY & HOLD")
	printMetricRow("total return", resp.StrategyMetrics.TotalReturnPct, resp.BaselineMetrics.TotalReturnPct)
	printMetricRow("cagr", resp.StrategyMetrics.CAGRPct, resp.BaselineMetrics.CAGRPct)
	printMetricRow("sharpe", metricString(resp.StrategyMetrics.SharpeRatio), metricString(resp.BaselineMetrics.SharpeRatio))
	printMetricRow("max drawdown", resp.StrategyMetrics.MaxDrawdownPct, resp.BaselineMetrics.MaxDrawdownPct)
	printMetricRow("trades", fmt.Sprintf("%d", resp.StrategyMetrics.NumTrades), fmt.Sprintf("%d", resp.BaselineMetrics.NumTrades))
	printMetricRow("win rate", metricPctString(resp.StrategyMetrics.WinRate), metricPctString(resp.BaselineMetrics.WinRate))
	printMetricRow("final value", fmt.Sprintf("$%.2f", resp.StrategyMetrics.FinalValue), fmt.Sprintf("$%.2f", resp.BaselineMetrics.FinalValue))

	fmt.Println()
	verdict := "underperformed"
	if resp.Comparison.Outperformed {
		verdict = "outperformed"
	}
	fmt.Printf("strategy %s buy & hold by %s\n", verdict, resp.Comparison.ExcessReturnPct)

	for _, ts := range resp.PerTicker {
		fmt.Printf("  %-8s trades=%d days_in_market=%d\n", ts.Ticker, ts.TradeCount, ts.DaysInMarket)
	}
}

func printMetricRow(label, strat, base string) {
	fmt.Printf("%-16s %14s %14s\n", label, strat, base)
}

func metricString(m *float64) string {
	if m == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *m)
}

func metricPctString(m *float64) string {
	if m == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *m*100)
}
