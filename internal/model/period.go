package model

import (
	"strconv"
	"time"
)

// Period is one backtest window, [Start, End).
type Period struct {
	Label string
	Start time.Time
	End   time.Time
}

// YearlyPeriods builds one period per calendar year from firstYear up to but
// not including lastYear, plus a final all-years window. This mirrors the
// standard batch used by the research scripts.
func YearlyPeriods(firstYear, lastYear int) []Period {
	out := make([]Period, 0, lastYear-firstYear+1)
	for y := firstYear; y < lastYear; y++ {
		out = append(out, Period{
			Label: formatSpan(y, y+1),
			Start: time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	out = append(out, Period{
		Label: formatSpan(firstYear, lastYear),
		Start: time.Date(firstYear, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(lastYear, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return out
}

func formatSpan(a, b int) string {
	return strconv.Itoa(a) + "-" + strconv.Itoa(b)
}
