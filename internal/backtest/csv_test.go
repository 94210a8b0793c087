package backtest

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"macro-backtest/internal/model"
)

func TestWriteLedger(t *testing.T) {
	ledger := []LedgerRow{
		{
			Index:      3,
			Date:       day(2024, time.January, 2),
			Signal:     model.SignalBull,
			TotalValue: decimal.NewFromFloat(1234.5),
			RiskValue:  decimal.NewFromInt(1000),
			SafeValue:  decimal.NewFromFloat(234.5),
			Cash:       decimal.Zero,
			Price:      402.5,
			RefMA:      math.NaN(),
			Drawdown:   -0.05,
			RateMom:    math.NaN(),
		},
	}

	var buf strings.Builder
	if err := writeLedger(&buf, ledger); err != nil {
		t.Fatalf("writeLedger: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header + 1 row", len(lines))
	}
	if lines[0] != "index,date,signal,total_value,risk_value,safe_value,cash,price,ref_ma,drawdown,rate_mom" {
		t.Errorf("header = %s", lines[0])
	}
	// NaN columns render empty, decimals render with two places.
	want := "3,2024-01-02,BULL,1234.50,1000.00,234.50,0.00,402.500000,,-0.050000,"
	if lines[1] != want {
		t.Errorf("row = %s, want %s", lines[1], want)
	}
}

func TestWriteSummary(t *testing.T) {
	results := []PeriodResult{
		{
			Period: model.Period{
				Label: "2020-2021",
				Start: day(2020, time.January, 1),
				End:   day(2021, time.January, 1),
			},
			Result: &Result{Metrics: Metrics{
				Steps:       52,
				Invested:    decimal.NewFromInt(52000),
				FinalValue:  decimal.NewFromInt(60000),
				Profit:      decimal.NewFromInt(8000),
				ROI:         0.153846,
				MaxDrawdown: math.NaN(),
			}},
		},
	}

	var buf strings.Builder
	if err := writeSummary(&buf, results); err != nil {
		t.Fatalf("writeSummary: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header + 1 row", len(lines))
	}
	want := "2020-2021,2020-01-01,2021-01-01,52,52000.00,60000.00,8000.00,0.153846,"
	if lines[1] != want {
		t.Errorf("row = %s, want %s", lines[1], want)
	}
}
