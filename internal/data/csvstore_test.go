package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"macro-backtest/internal/model"
)

func TestReadSeriesCSVColumnSniffing(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		wantLen  int
		wantLast float64
	}{
		{
			name:     "yahoo quote layout",
			csv:      "Date,Open,High,Low,Close,Adj Close,Volume\n2024-01-02,1,2,0.5,100.5,100.5,1000\n2024-01-03,1,2,0.5,101.25,101.25,1100\n",
			wantLen:  2,
			wantLast: 101.25,
		},
		{
			name:     "fred layout",
			csv:      "observation_date,WRESBAL\n2024-01-03,3200.5\n2024-01-10,3185.0\n",
			wantLen:  2,
			wantLast: 3185.0,
		},
		{
			name:     "lowercase value column",
			csv:      "date,value\n2024-01-02,7\n",
			wantLen:  1,
			wantLast: 7,
		},
		{
			name:     "headerless fallback to first two columns",
			csv:      "d,v\n2024-01-02,42\n",
			wantLen:  1,
			wantLast: 42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := ReadSeriesCSV(strings.NewReader(tt.csv))
			if err != nil {
				t.Fatalf("ReadSeriesCSV: %v", err)
			}
			if series.Len() != tt.wantLen {
				t.Fatalf("len = %d, want %d", series.Len(), tt.wantLen)
			}
			last, _ := series.Last()
			if last.Value != tt.wantLast {
				t.Errorf("last value = %v, want %v", last.Value, tt.wantLast)
			}
		})
	}
}

func TestReadSeriesCSVDropsDirtyRows(t *testing.T) {
	csv := "observation_date,VALUE\n2024-01-03,100\n2024-01-10,.\nnot-a-date,50\n2024-01-17,102\n"
	series, err := ReadSeriesCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadSeriesCSV: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("len = %d, want 2 (dirty rows dropped)", series.Len())
	}
}

func TestReadSeriesCSVUTF16BOM(t *testing.T) {
	plain := "Date,Close\n2024-01-02,100\n2024-01-03,101\n"
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, _, err := transform.String(encoder, plain)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	series, err := ReadSeriesCSV(strings.NewReader(encoded))
	if err != nil {
		t.Fatalf("ReadSeriesCSV: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("len = %d, want 2", series.Len())
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "QQQ.csv")

	series := model.NewSeries([]model.Point{
		{Date: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), Value: 400.25},
		{Date: time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), Value: 401.5},
	})
	if err := SaveSeriesCSV(path, series, "Close"); err != nil {
		t.Fatalf("SaveSeriesCSV: %v", err)
	}

	loaded, err := LoadSeriesCSV(path)
	if err != nil {
		t.Fatalf("LoadSeriesCSV: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("len = %d, want 2", loaded.Len())
	}
	if loaded.Points[0].Value != 400.25 || loaded.Points[1].Value != 401.5 {
		t.Errorf("values = %v,%v want 400.25,401.5", loaded.Points[0].Value, loaded.Points[1].Value)
	}
}

func TestSeriesFileName(t *testing.T) {
	if got := SeriesFileName("^TNX"); got != "TNX.csv" {
		t.Errorf("SeriesFileName(^TNX) = %s, want TNX.csv", got)
	}
	if got := SeriesFileName("QQQ"); got != "QQQ.csv" {
		t.Errorf("SeriesFileName(QQQ) = %s, want QQQ.csv", got)
	}
}

func TestLoadFrameInputsSplicesSafeHistory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("QQQ.csv", "Date,Close\n2024-01-02,400\n2024-01-03,401\n")
	write("SGOV.csv", "Date,Close\n2024-01-03,100.2\n")
	write("SHV.csv", "Date,Close\n2024-01-02,110.1\n2024-01-03,110.0\n")

	in, err := LoadFrameInputs(dir, "QQQ", "SGOV")
	if err != nil {
		t.Fatalf("LoadFrameInputs: %v", err)
	}
	if in.Safe.Len() != 2 {
		t.Fatalf("safe len = %d, want 2 (SHV splice)", in.Safe.Len())
	}
	// SGOV wins on the overlapping date.
	if v, _ := in.Safe.At(time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)); v != 100.2 {
		t.Errorf("overlap value = %v, want SGOV's 100.2", v)
	}
	// Optional macro feeds are absent and stay empty.
	if !in.HYSpread.IsEmpty() {
		t.Error("HYSpread should be empty when the file is missing")
	}
}
