package analysis

import (
	"macro-backtest/internal/model"
)

// YearChange is one year-end observation with its change from the prior
// year-end.
type YearChange struct {
	Year      int
	Level     float64
	Change    float64
	PctChange float64
}

// YearlyChange reduces a series to its last observation per calendar year
// and reports absolute and percent change year over year. The first year has
// no prior reference and carries zero changes.
func YearlyChange(series model.Series) []YearChange {
	years := series.ResampleYearEnd()
	out := make([]YearChange, 0, len(years))
	for i, yp := range years {
		yc := YearChange{Year: yp.Year, Level: yp.Value}
		if i > 0 && years[i-1].Value != 0 {
			yc.Change = yp.Value - years[i-1].Value
			yc.PctChange = yc.Change / years[i-1].Value * 100
		}
		out = append(out, yc)
	}
	return out
}
