package data

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"macro-backtest/internal/model"
)

// LoadFrameInputs reads a downloaded data directory back into frame inputs.
// The risk series is required. The safe series gets its pre-listing history
// spliced from SHV when the safe instrument is the younger SGOV. Yield and
// macro series are optional; a missing file leaves the column zero with a
// warning log.
func LoadFrameInputs(dir, riskSymbol, safeSymbol string) (model.FrameInputs, error) {
	var in model.FrameInputs

	risk, err := LoadSeriesCSV(filepath.Join(dir, SeriesFileName(riskSymbol)))
	if err != nil {
		return model.FrameInputs{}, fmt.Errorf("load risk series %s: %w", riskSymbol, err)
	}
	in.Risk = risk

	safe, err := LoadSeriesCSV(filepath.Join(dir, SeriesFileName(safeSymbol)))
	if err != nil {
		return model.FrameInputs{}, fmt.Errorf("load safe series %s: %w", safeSymbol, err)
	}
	if safeSymbol == "SGOV" {
		if fallback, ok := loadOptional(dir, "SHV"); ok {
			safe = safe.CombineFirst(fallback)
		}
	}
	in.Safe = safe

	if yield, ok := loadOptional(dir, "TNX"); ok {
		in.Yield = yield
	}
	if s, ok := loadOptional(dir, "WRESBAL"); ok {
		in.Reserves = s
	}
	if s, ok := loadOptional(dir, "TGA"); ok {
		in.TGA = s
	} else if s, ok := loadOptional(dir, "WTREGEN"); ok {
		in.TGA = s
	}
	if s, ok := loadOptional(dir, "RRPONTSYD"); ok {
		in.RRP = s
	}
	if s, ok := loadOptional(dir, "BAMLH0A0HYM2"); ok {
		in.HYSpread = s
	}
	return in, nil
}

func loadOptional(dir, name string) (model.Series, bool) {
	path := filepath.Join(dir, SeriesFileName(name))
	if _, err := os.Stat(path); err != nil {
		log.Printf("[Store] Optional series %s missing in %s, column defaults to zero", name, dir)
		return model.Series{}, false
	}
	series, err := LoadSeriesCSV(path)
	if err != nil {
		log.Printf("[Store] Could not read %s: %v, column defaults to zero", path, err)
		return model.Series{}, false
	}
	return series, true
}
