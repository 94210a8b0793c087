package data

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"macro-backtest/internal/model"
)

// SeriesSpec names one downloadable series and where it comes from.
type SeriesSpec struct {
	Name   string `json:"name"`
	Source string `json:"source"` // "yahoo", "fred" or "treasury"
	ID     string `json:"id"`
}

// BacktestCatalog is the default set of series the backtests consume.
func BacktestCatalog() []SeriesSpec {
	return []SeriesSpec{
		{Name: "QQQ", Source: "yahoo", ID: "QQQ"},
		{Name: "SHV", Source: "yahoo", ID: "SHV"},
		{Name: "SGOV", Source: "yahoo", ID: "SGOV"},
		{Name: "TNX", Source: "yahoo", ID: "^TNX"},
		{Name: "WRESBAL", Source: "fred", ID: "WRESBAL"},
		{Name: "WTREGEN", Source: "fred", ID: "WTREGEN"},
		{Name: "RRPONTSYD", Source: "fred", ID: "RRPONTSYD"},
		{Name: "BAMLH0A0HYM2", Source: "fred", ID: "BAMLH0A0HYM2"},
		{Name: "PCEPI", Source: "fred", ID: "PCEPI"},
		{Name: "TGA", Source: "treasury", ID: "TGA"},
	}
}

// Downloader coordinates the upstream clients, the response cache and the
// on-disk CSV store.
type Downloader struct {
	FRED     *FREDClient
	Yahoo    *YahooClient
	Treasury *TreasuryClient
	DataDir  string
}

// NewDownloader wires default clients against a data directory.
func NewDownloader(dataDir string) *Downloader {
	return &Downloader{
		FRED:     NewFREDClient(""),
		Yahoo:    NewYahooClient(""),
		Treasury: NewTreasuryClient(""),
		DataDir:  dataDir,
	}
}

// Fetch retrieves one series over [start, end], consulting the development
// cache first when it is enabled.
func (d *Downloader) Fetch(spec SeriesSpec, start, end time.Time) (model.Series, error) {
	cache := GetCache()
	key := GenerateCacheKey(spec.Source, spec.ID, start, end)
	if series, ok := cache.Get(key); ok {
		log.Printf("[Download] Cache hit: %s/%s", spec.Source, spec.ID)
		return series, nil
	}

	var series model.Series
	var err error
	switch spec.Source {
	case "yahoo":
		series, err = d.Yahoo.FetchCloseSeries(spec.ID, start, end)
	case "fred":
		series, err = d.FRED.FetchSeries(spec.ID, start, end)
	case "treasury":
		series, err = d.Treasury.FetchTGA(start, end)
	default:
		return model.Series{}, fmt.Errorf("unknown source %q for series %s", spec.Source, spec.Name)
	}
	if err != nil {
		return model.Series{}, err
	}

	cache.Set(key, series)
	return series, nil
}

// SyncBacktestData downloads `years` of history for every catalog series
// into dir and writes a Summary.csv manifest. Existing files are always
// overwritten; the backtest directory is the source of truth for a run.
func (d *Downloader) SyncBacktestData(specs []SeriesSpec, years int) error {
	if years <= 0 {
		years = 10
	}
	end := time.Now()
	start := end.AddDate(-years, 0, 0)
	return d.sync(specs, d.DataDir, start, end, 0)
}

// SyncAnalysisData downloads one year of history for every catalog series
// into a dated subdirectory and keeps only the most recent quarter of each
// series. With force false an existing directory for today is left alone.
func (d *Downloader) SyncAnalysisData(specs []SeriesSpec, force bool) (string, error) {
	end := time.Now()
	start := end.AddDate(-1, 0, 0)
	dir := filepath.Join(d.DataDir, "analysis-"+end.Format("2006-01-02"))

	if _, err := os.Stat(dir); err == nil && !force {
		log.Printf("[Download] %s already exists, skipping (use --force to refresh)", dir)
		return dir, nil
	}

	if err := d.sync(specs, dir, start, end, 0.75); err != nil {
		return "", err
	}
	return dir, nil
}

// sync downloads every series, optionally trimming a leading fraction of
// observations, and writes CSVs plus the manifest.
func (d *Downloader) sync(specs []SeriesSpec, dir string, start, end time.Time, trimFrac float64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	type manifestRow struct {
		spec  SeriesSpec
		rows  int
		first time.Time
		last  time.Time
	}
	var manifest []manifestRow

	for _, spec := range specs {
		series, err := d.Fetch(spec, start, end)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", spec.Name, err)
		}
		if trimFrac > 0 && series.Len() > 0 {
			cut := int(float64(series.Len()) * trimFrac)
			series = model.NewSeries(series.Points[cut:])
		}
		path := filepath.Join(dir, SeriesFileName(spec.Name))
		if err := SaveSeriesCSV(path, series, "Close"); err != nil {
			return fmt.Errorf("save %s: %w", spec.Name, err)
		}

		row := manifestRow{spec: spec, rows: series.Len()}
		if series.Len() > 0 {
			row.first = series.Points[0].Date
			row.last = series.Points[series.Len()-1].Date
		}
		manifest = append(manifest, row)
	}

	f, err := os.Create(filepath.Join(dir, "Summary.csv"))
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "source", "id", "rows", "first", "last"}); err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}
	for _, row := range manifest {
		first, last := "", ""
		if row.rows > 0 {
			first = row.first.Format("2006-01-02")
			last = row.last.Format("2006-01-02")
		}
		rec := []string{row.spec.Name, row.spec.Source, row.spec.ID, strconv.Itoa(row.rows), first, last}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write manifest record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush manifest: %w", err)
	}

	log.Printf("[Download] Synced %d series into %s", len(manifest), dir)
	return nil
}

// SeriesFileName maps a series name to its on-disk CSV name. Ticker
// characters that are awkward in paths are stripped.
func SeriesFileName(name string) string {
	clean := strings.NewReplacer("^", "", "/", "-", " ", "_").Replace(name)
	return clean + ".csv"
}
