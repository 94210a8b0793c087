package backtest

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrintSummary renders the batch summary as a console table with grouped
// dollar amounts.
func PrintSummary(w io.Writer, results []PeriodResult) {
	p := message.NewPrinter(language.English)

	fmt.Fprintln(w, "===== Backtest Summary =====")
	p.Fprintf(w, "%-12s %9s %14s %14s %14s %9s %9s\n",
		"period", "steps", "invested", "final", "profit", "roi", "max_dd")

	for _, pr := range results {
		m := pr.Result.Metrics
		p.Fprintf(w, "%-12s %9d %14s %14s %14s %8.2f%% %8.2f%%\n",
			pr.Period.Label,
			m.Steps,
			dollars(p, m.Invested.InexactFloat64()),
			dollars(p, m.FinalValue.InexactFloat64()),
			dollars(p, m.Profit.InexactFloat64()),
			m.ROI*100,
			m.MaxDrawdown*100,
		)
	}
	fmt.Fprintln(w, "============================")
}

func dollars(p *message.Printer, v float64) string {
	return p.Sprintf("$%.0f", v)
}
