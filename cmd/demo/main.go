package main

import (
	"flag"
	"fmt"

	"macro-backtest/internal/backtest"
	"macro-backtest/internal/config"
	"macro-backtest/internal/data"
	"macro-backtest/internal/model"
)

// Demo:
// - Load downloaded CSVs from a data directory
// - Build the joined daily frame
// - Run the trend strategy for a few weeks to show how the pieces fit together
func main() {
	dataDir := flag.String("data", "data", "Data directory with downloaded CSVs")
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	n := flag.Int("n", 12, "Number of weekly steps to simulate")
	outCSV := flag.String("out", "", "Optional path to write ledger CSV (e.g. results/demo.csv)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}
	cfg.Data.Dir = *dataDir

	inputs, err := data.LoadFrameInputs(cfg.Data.Dir, cfg.Data.RiskSymbol, cfg.Data.SafeSymbol)
	if err != nil {
		panic(err)
	}
	frame, err := model.BuildDailyFrame(inputs, cfg.ToFrameOptions())
	if err != nil {
		panic(err)
	}
	if frame.IsEmpty() {
		panic("no rows in frame")
	}

	strat, err := cfg.BuildStrategy()
	if err != nil {
		panic(err)
	}
	params, err := cfg.ToEngineParams()
	if err != nil {
		panic(err)
	}

	engine := backtest.New()
	result, err := engine.Run(frame, strat, params)
	if err != nil {
		panic(err)
	}
	if len(result.Ledger) == 0 {
		panic("no trading steps in window")
	}

	fmt.Printf("Loaded %d daily rows (%s/%s)\n", len(frame.Rows), cfg.Data.RiskSymbol, cfg.Data.SafeSymbol)
	fmt.Printf("Strategy=%s\n\n", strat.Name())

	steps := *n
	if steps > len(result.Ledger) {
		steps = len(result.Ledger)
	}
	for i := 0; i < steps; i++ {
		r := result.Ledger[i]
		fmt.Printf(
			"%s signal=%-10s price=%8.2f  total=%10s  risk=%10s  safe=%10s  cash=%8s\n",
			r.Date.Format("2006-01-02"),
			string(r.Signal),
			r.Price,
			r.TotalValue.StringFixed(2),
			r.RiskValue.StringFixed(2),
			r.SafeValue.StringFixed(2),
			r.Cash.StringFixed(2),
		)
	}

	if *outCSV != "" {
		if err := backtest.WriteLedgerCSV(*outCSV, result.Ledger); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	m := result.Metrics
	fmt.Printf("\nDone. Steps=%d  Invested=$%s  Final=$%s  ROI=%.2f%%\n",
		m.Steps, m.Invested.StringFixed(2), m.FinalValue.StringFixed(2), m.ROI*100)
}
