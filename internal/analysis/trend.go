package analysis

import (
	"fmt"
	"math"
	"time"

	"macro-backtest/internal/model"
)

// TrendReport summarizes where the latest weekly close sits relative to its
// moving average.
type TrendReport struct {
	Date        time.Time
	Close       float64
	MA          float64
	Above       bool
	DistancePct float64 // (close - ma) / ma * 100
	Streak      int     // consecutive weeks on the current side
	MAWindow    int
}

// TrendStatus resamples a daily close series to weekly (Friday-stamped)
// observations, applies a rolling mean and reports the latest close versus
// that average plus how long the series has stayed on the same side.
func TrendStatus(series model.Series, maWindow int) (TrendReport, error) {
	if maWindow <= 0 {
		maWindow = 20
	}
	weekly := series.ResampleWeekly(time.Friday)
	if weekly.Len() < maWindow {
		return TrendReport{}, fmt.Errorf("need at least %d weekly observations, have %d", maWindow, weekly.Len())
	}

	ma := weekly.RollingMean(maWindow)
	last := weekly.Len() - 1
	if math.IsNaN(ma[last]) {
		return TrendReport{}, fmt.Errorf("moving average undefined at latest observation")
	}

	report := TrendReport{
		Date:     weekly.Points[last].Date,
		Close:    weekly.Points[last].Value,
		MA:       ma[last],
		MAWindow: maWindow,
	}
	report.Above = report.Close > report.MA
	if report.MA != 0 {
		report.DistancePct = (report.Close - report.MA) / report.MA * 100
	}

	for i := last; i >= 0; i-- {
		if math.IsNaN(ma[i]) {
			break
		}
		if (weekly.Points[i].Value > ma[i]) != report.Above {
			break
		}
		report.Streak++
	}
	return report, nil
}
