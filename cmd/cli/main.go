package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"macro-backtest/internal/analysis"
	"macro-backtest/internal/backtest"
	"macro-backtest/internal/config"
	"macro-backtest/internal/data"
	"macro-backtest/internal/model"
	"macro-backtest/internal/strategy"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backtest":
		cmdBacktest(os.Args[2:])
	case "signal":
		cmdSignal(os.Args[2:])
	case "seasonality":
		cmdSeasonality(os.Args[2:])
	case "inflation":
		cmdInflation(os.Args[2:])
	case "correlate":
		cmdCorrelate(os.Args[2:])
	case "rank":
		cmdRank(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli backtest --data data --config examples/config.yaml --out results")
	fmt.Println("  cli signal --data data --symbol QQQ")
	fmt.Println("  cli seasonality --data data --series TGA")
	fmt.Println("  cli inflation --data data --series PCEPI")
	fmt.Println("  cli correlate --data data --a WRESBAL --b QQQ")
	fmt.Println("  cli rank --data data --config examples/config.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - backtest replays the configured periods and writes summary + per-period ledgers")
	fmt.Println("  - signal prints the current weekly close-vs-MA status")
}

func cmdBacktest(args []string) {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	dataDir := fs.String("data", "data", "Data directory with downloaded CSVs")
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	outDir := fs.String("out", "results", "Output directory")
	ledgers := fs.Bool("ledgers", false, "Also write a ledger CSV per period")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	frame, strat, params := setup(cfg)
	periods, err := cfg.ToPeriods()
	if err != nil {
		panic(err)
	}

	engine := backtest.New()
	results, err := engine.RunPeriods(frame, strat, params, periods, true)
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		panic(err)
	}
	summaryPath := filepath.Join(*outDir, "summary.csv")
	if err := backtest.WriteSummaryCSV(summaryPath, results); err != nil {
		panic(err)
	}
	if *ledgers {
		for _, pr := range results {
			path := filepath.Join(*outDir, "ledger-"+pr.Period.Label+".csv")
			if err := backtest.WriteLedgerCSV(path, pr.Result.Ledger); err != nil {
				panic(err)
			}
		}
	}

	fmt.Println()
	backtest.PrintSummary(os.Stdout, results)
	fmt.Printf("\nWrote %s\n", summaryPath)
}

func cmdSignal(args []string) {
	fs := flag.NewFlagSet("signal", flag.ExitOnError)
	dataDir := fs.String("data", "data", "Data directory")
	symbol := fs.String("symbol", "QQQ", "Symbol to check")
	maWindow := fs.Int("ma", 20, "Moving-average window (weeks)")
	_ = fs.Parse(args)

	series := loadSeries(*dataDir, *symbol)
	report, err := analysis.TrendStatus(series, *maWindow)
	if err != nil {
		panic(err)
	}

	side := "ABOVE"
	if !report.Above {
		side = "BELOW"
	}
	fmt.Printf("%s @ %s\n", *symbol, report.Date.Format("2006-01-02"))
	fmt.Printf("  close  %.2f\n", report.Close)
	fmt.Printf("  MA%-3d  %.2f\n", report.MAWindow, report.MA)
	fmt.Printf("  %s the average by %.2f%% (%d weeks on this side)\n", side, report.DistancePct, report.Streak)
}

func cmdSeasonality(args []string) {
	fs := flag.NewFlagSet("seasonality", flag.ExitOnError)
	dataDir := fs.String("data", "data", "Data directory")
	name := fs.String("series", "TGA", "Series to bucket by month")
	_ = fs.Parse(args)

	series := loadSeries(*dataDir, *name)
	stats := analysis.Seasonality(series)

	fmt.Printf("%s monthly seasonality (%d observations)\n", *name, series.Len())
	fmt.Printf("%-10s %12s %12s %6s\n", "month", "mean level", "mean change", "obs")
	for _, s := range stats {
		fmt.Printf("%-10s %12.2f %+12.2f %6d\n", s.Month.String(), s.MeanLevel, s.MeanChange, s.Count)
	}
}

func cmdInflation(args []string) {
	fs := flag.NewFlagSet("inflation", flag.ExitOnError)
	dataDir := fs.String("data", "data", "Data directory")
	name := fs.String("series", "PCEPI", "Price index series")
	_ = fs.Parse(args)

	series := loadSeries(*dataDir, *name)
	changes := analysis.YearlyChange(series)

	fmt.Printf("%s year-end levels\n", *name)
	fmt.Printf("%-6s %10s %10s %8s\n", "year", "level", "change", "pct")
	for _, yc := range changes {
		fmt.Printf("%-6d %10.2f %+10.2f %+7.2f%%\n", yc.Year, yc.Level, yc.Change, yc.PctChange)
	}
}

func cmdCorrelate(args []string) {
	fs := flag.NewFlagSet("correlate", flag.ExitOnError)
	dataDir := fs.String("data", "data", "Data directory")
	a := fs.String("a", "WRESBAL", "First series")
	b := fs.String("b", "QQQ", "Second series")
	_ = fs.Parse(args)

	sa := loadSeries(*dataDir, *a)
	sb := loadSeries(*dataDir, *b)
	report, err := analysis.Correlation(sa, sb)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s vs %s: r=%.4f over %d shared observations\n", *a, *b, report.Pearson, report.Overlap)
}

func cmdRank(args []string) {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	dataDir := fs.String("data", "data", "Data directory")
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	// Ranking compares trend variants, which walk the daily frame.
	cfg.Strategy.Name = "trend"

	frame, _, params := setup(cfg)

	base := strategy.DefaultTrendParams()
	noKraken := base
	noKraken.CrashThreshold = -1
	noShock := base
	noShock.RateShockThreshold = 100
	aggressive := base
	aggressive.BullRiskWeight = 1.0
	aggressive.BullSafeWeight = 0.0
	aggressive.BearRiskWeight = 0.5
	aggressive.BearSafeWeight = 0.5

	variants := []analysis.Variant{
		{Name: "trend", Strategy: strategy.NewTrendStrategy(cfg.Data.SafeSymbol, base)},
		{Name: "trend-no-kraken", Strategy: strategy.NewTrendStrategy(cfg.Data.SafeSymbol, noKraken)},
		{Name: "trend-no-rate-shock", Strategy: strategy.NewTrendStrategy(cfg.Data.SafeSymbol, noShock)},
		{Name: "trend-aggressive", Strategy: strategy.NewTrendStrategy(cfg.Data.SafeSymbol, aggressive)},
	}

	rankings, err := analysis.RankStrategies(frame, variants, params)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%-5s %-22s %10s %14s %14s\n", "rank", "variant", "roi", "profit", "final value")
	for _, r := range rankings {
		fmt.Printf("%-5d %-22s %9.2f%% %14s %14s\n",
			r.Rank, r.Name, r.Metrics.ROI*100,
			r.Metrics.Profit.StringFixed(2), r.Metrics.FinalValue.StringFixed(2))
	}
}

// Helpers

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func loadSeries(dir, name string) model.Series {
	series, err := data.LoadSeriesCSV(filepath.Join(dir, data.SeriesFileName(name)))
	if err != nil {
		panic(err)
	}
	return series
}

func setup(cfg *config.Config) (*model.Frame, strategy.Strategy, backtest.Params) {
	inputs, err := data.LoadFrameInputs(cfg.Data.Dir, cfg.Data.RiskSymbol, cfg.Data.SafeSymbol)
	if err != nil {
		panic(err)
	}

	var frame *model.Frame
	if cfg.Strategy.Name == "lights" {
		frame, err = model.BuildWeeklyFrame(inputs, time.Friday, cfg.ToFrameOptions())
	} else {
		frame, err = model.BuildDailyFrame(inputs, cfg.ToFrameOptions())
	}
	if err != nil {
		panic(err)
	}

	strat, err := cfg.BuildStrategy()
	if err != nil {
		panic(err)
	}
	params, err := cfg.ToEngineParams()
	if err != nil {
		panic(err)
	}
	return frame, strat, params
}
