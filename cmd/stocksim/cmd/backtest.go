package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/rustyeddy/stocksim/backtest"
	"github.com/rustyeddy/stocksim/journal"
	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/strategies"
	"github.com/spf13/cobra"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a strategy over historical OHLCV data",
	Long: `Backtest replays a signal evaluator over a CSV of daily bars
(date,open,high,low,close,volume) and prints the trade log and summary
metrics.

Supported strategies:
  - rsi: enter below the oversold threshold, exit above overbought
  - sma_crossover: enter when the fast SMA crosses above the slow SMA

Example:
  stocksim backtest --csv data/aapl.csv --symbol AAPL --strategy rsi`,
	RunE: runBacktestCmd,
}

var (
	btCSVPath    string
	btSymbol     string
	btStrategy   string
	btCapital    float64
	btDBPath     string
	btRSIPeriod  int
	btOversold   float64
	btOverbought float64
	btFast       int
	btSlow       int
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&btCSVPath, "csv", "", "path to bar CSV (date,open,high,low,close,volume) (required)")
	backtestCmd.Flags().StringVarP(&btSymbol, "symbol", "i", "STOCK", "instrument symbol")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "rsi", "strategy name (rsi, sma_crossover)")
	backtestCmd.Flags().Float64VarP(&btCapital, "initial-cash", "b", 100_000, "starting capital")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "optional SQLite journal for the trade log")

	backtestCmd.Flags().IntVar(&btRSIPeriod, "rsi-period", 14, "rsi: lookback period")
	backtestCmd.Flags().Float64Var(&btOversold, "oversold", 30, "rsi: entry threshold")
	backtestCmd.Flags().Float64Var(&btOverbought, "overbought", 70, "rsi: exit threshold")
	backtestCmd.Flags().IntVar(&btFast, "fast", 50, "sma_crossover: fast SMA period")
	backtestCmd.Flags().IntVar(&btSlow, "slow", 200, "sma_crossover: slow SMA period")

	backtestCmd.MarkFlagRequired("csv")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	bars, err := market.LoadBarsCSV(btCSVPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	ev, err := strategies.FromParams(btStrategy, strategies.Params{
		RSIPeriod:     btRSIPeriod,
		RSIOversold:   btOversold,
		RSIOverbought: btOverbought,
		FastPeriod:    btFast,
		SlowPeriod:    btSlow,
	})
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	fmt.Printf("Running backtest with strategy: %s\n", ev.Name())
	fmt.Printf("  Bars: %s (%d bars)\n", btCSVPath, len(bars))
	fmt.Printf("  Capital: $%.2f\n\n", btCapital)

	res, err := backtest.Run(backtest.Config{
		Symbol:         btSymbol,
		InitialCapital: btCapital,
	}, bars, ev)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	if btDBPath != "" {
		if err := journalTrades(btDBPath, res); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	printTrades(res)
	printMetrics(res)
	return nil
}

func journalTrades(dbPath string, res backtest.Result) error {
	j, err := journal.NewSQLite(dbPath)
	if err != nil {
		return err
	}
	defer j.Close()

	for i, t := range res.Trades {
		rec := journal.TradeRecord{
			TradeID:    fmt.Sprintf("%s-%d", res.Symbol, i),
			Symbol:     t.Symbol,
			Quantity:   t.Quantity,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			PnL:        t.PnL,
			PnLPercent: t.PnLPercent,
			ExitTime:   t.ExitTime,
		}
		if err := j.RecordTrade(rec); err != nil {
			return err
		}
	}
	return nil
}

func printTrades(res backtest.Result) {
	if len(res.Trades) == 0 {
		fmt.Println("No trades.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Symbol", "Qty", "Entry", "Exit", "PnL", "PnL %", "Exit Date")

	for i, t := range res.Trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Symbol,
			fmt.Sprintf("%d", t.Quantity),
			fmt.Sprintf("$%.2f", t.EntryPrice),
			fmt.Sprintf("$%.2f", t.ExitPrice),
			fmt.Sprintf("$%.2f", t.PnL),
			fmt.Sprintf("%.2f%%", t.PnLPercent),
			t.ExitTime.Format("2006-01-02"),
		)
	}

	table.Render()
}

func printMetrics(res backtest.Result) {
	m := res.Metrics
	fmt.Printf("\nBacktest Complete!\n")
	fmt.Printf("  Trades: %d (%d won / %d lost, %.1f%% win rate)\n",
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.WinRate)
	fmt.Printf("  Total PnL: $%.2f\n", m.TotalPnL)
	fmt.Printf("  Profit Factor: %.2f\n", m.ProfitFactor)
	fmt.Printf("  Max Drawdown: %.2f%%\n", m.MaxDrawdown)
	fmt.Printf("  Sharpe Ratio: %.2f\n", m.SharpeRatio)
	fmt.Printf("  Total Return: %.2f%%\n", m.TotalReturnPercent)
	fmt.Printf("  Final Value: $%.2f\n", m.FinalPortfolioValue)
}
