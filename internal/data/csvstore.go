package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"macro-backtest/internal/model"
)

// dateLayouts covers the formats the upstream sources write.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
}

// LoadSeriesCSV reads a date/value CSV from disk into a Series. The file may
// come from any of the downloaders or from a hand-exported spreadsheet, so
// the loader sniffs columns by header name: the date column is
// "Date"/"date"/"observation_date" (or the first column), the value column
// is "Close"/"close"/"VALUE"/"value" (or the first non-date column). Rows
// that fail to parse are dropped. UTF-8 and UTF-16 byte order marks are
// stripped before decoding.
func LoadSeriesCSV(path string) (model.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	series, err := ReadSeriesCSV(f)
	if err != nil {
		return model.Series{}, fmt.Errorf("read %s: %w", path, err)
	}
	return series, nil
}

// ReadSeriesCSV parses CSV content from r. See LoadSeriesCSV for the
// sniffing rules.
func ReadSeriesCSV(r io.Reader) (model.Series, error) {
	// Spreadsheet exports on Windows often carry a UTF-16 or UTF-8 BOM.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	cr := csv.NewReader(transform.NewReader(r, decoder))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return model.Series{}, fmt.Errorf("read header: %w", err)
	}
	dateCol, valueCol := sniffColumns(header)
	if dateCol < 0 || valueCol < 0 {
		return model.Series{}, fmt.Errorf("could not locate date and value columns in header %v", header)
	}

	var points []model.Point
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Series{}, fmt.Errorf("read record: %w", err)
		}
		if len(rec) <= dateCol || len(rec) <= valueCol {
			continue
		}
		date, ok := parseDate(rec[dateCol])
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[valueCol]), 64)
		if err != nil {
			continue
		}
		points = append(points, model.Point{Date: date, Value: value})
	}
	return model.NewSeries(points), nil
}

func sniffColumns(header []string) (dateCol, valueCol int) {
	dateCol, valueCol = -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "date", "observation_date", "record_date":
			if dateCol < 0 {
				dateCol = i
			}
		case "close", "adj close", "adjclose", "value":
			if valueCol < 0 {
				valueCol = i
			}
		}
	}
	if dateCol < 0 && len(header) > 0 {
		dateCol = 0
	}
	if valueCol < 0 {
		for i := range header {
			if i != dateCol {
				valueCol = i
				break
			}
		}
	}
	return dateCol, valueCol
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SaveSeriesCSV writes a series as a two-column date/value CSV. The parent
// directory is created if missing.
func SaveSeriesCSV(path string, series model.Series, valueHeader string) error {
	if valueHeader == "" {
		valueHeader = "Close"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date", valueHeader}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range series.Points {
		rec := []string{
			p.Date.Format("2006-01-02"),
			strconv.FormatFloat(p.Value, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	log.Printf("[Store] Wrote %d rows to %s", series.Len(), path)
	return nil
}

// SaveQuoteCSV writes daily bars in the column layout the backtests read
// back (Date,Open,High,Low,Close,Adj Close,Volume).
func SaveQuoteCSV(path string, quotes []Quote) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, q := range quotes {
		rec := []string{
			q.Date.Format("2006-01-02"),
			strconv.FormatFloat(q.Open, 'f', -1, 64),
			strconv.FormatFloat(q.High, 'f', -1, 64),
			strconv.FormatFloat(q.Low, 'f', -1, 64),
			strconv.FormatFloat(q.Close, 'f', -1, 64),
			strconv.FormatFloat(q.AdjClose, 'f', -1, 64),
			strconv.FormatInt(q.Volume, 10),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	log.Printf("[Store] Wrote %d rows to %s", len(quotes), path)
	return nil
}
