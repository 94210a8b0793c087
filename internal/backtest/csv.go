package backtest

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
)

// WriteLedgerCSV writes the per-step ledger to path.
func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeLedger(f, ledger)
}

func writeLedger(w io.Writer, ledger []LedgerRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"index",
		"date",
		"signal",
		"total_value",
		"risk_value",
		"safe_value",
		"cash",
		"price",
		"ref_ma",
		"drawdown",
		"rate_mom",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			r.Date.Format("2006-01-02"),
			string(r.Signal),
			r.TotalValue.StringFixed(2),
			r.RiskValue.StringFixed(2),
			r.SafeValue.StringFixed(2),
			r.Cash.StringFixed(2),
			fmtFloat(r.Price),
			fmtFloat(r.RefMA),
			fmtFloat(r.Drawdown),
			fmtFloat(r.RateMom),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// WriteSummaryCSV writes one row of metrics per period.
func WriteSummaryCSV(path string, results []PeriodResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeSummary(f, results)
}

func writeSummary(w io.Writer, results []PeriodResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"period",
		"start",
		"end",
		"steps",
		"invested",
		"final_value",
		"profit",
		"roi",
		"max_drawdown",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, pr := range results {
		m := pr.Result.Metrics
		row := []string{
			pr.Period.Label,
			pr.Period.Start.Format("2006-01-02"),
			pr.Period.End.Format("2006-01-02"),
			strconv.Itoa(m.Steps),
			m.Invested.StringFixed(2),
			m.FinalValue.StringFixed(2),
			m.Profit.StringFixed(2),
			fmtFloat(m.ROI),
			fmtFloat(m.MaxDrawdown),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

func fmtFloat(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', 6, 64)
}
