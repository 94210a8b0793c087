package main

import (
	"flag"
	"fmt"
	"log"

	"macro-backtest/internal/data"
)

func main() {
	var (
		mode    = flag.String("mode", "backtest", "Download mode: \"backtest\" (full history) or \"analysis\" (recent quarter)")
		dataDir = flag.String("data", "data", "Data directory")
		years   = flag.Int("years", 10, "Years of history for backtest mode")
		force   = flag.Bool("force", false, "Overwrite today's analysis directory if it exists")
	)
	flag.Parse()

	dl := data.NewDownloader(*dataDir)
	catalog := data.BacktestCatalog()

	switch *mode {
	case "backtest":
		fmt.Printf("Downloading %d years of history for %d series into %s\n", *years, len(catalog), *dataDir)
		if err := dl.SyncBacktestData(catalog, *years); err != nil {
			log.Fatalf("Download failed: %v", err)
		}
		fmt.Println("Done. See Summary.csv for the manifest.")
	case "analysis":
		fmt.Printf("Downloading recent history for %d series\n", len(catalog))
		dir, err := dl.SyncAnalysisData(catalog, *force)
		if err != nil {
			log.Fatalf("Download failed: %v", err)
		}
		fmt.Printf("Done. Data in %s\n", dir)
	default:
		log.Fatalf("unknown mode %q (want \"backtest\" or \"analysis\")", *mode)
	}
}
