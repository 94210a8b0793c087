package analysis

import (
	"time"

	"macro-backtest/internal/model"
)

// MonthStat aggregates a series by calendar month.
type MonthStat struct {
	Month      time.Month
	MeanLevel  float64
	MeanChange float64 // mean month-over-month change ending in this month
	Count      int
}

// Seasonality buckets a series by calendar month, reporting the mean level
// and the mean change from the prior month's mean start. Built for the TGA
// balance, where quarterly tax dates give each month a distinct drift.
func Seasonality(series model.Series) []MonthStat {
	type monthKey struct {
		year  int
		month time.Month
	}

	// Last observation per calendar month, plus per-month level sums.
	monthEnd := make(map[monthKey]float64)
	var order []monthKey
	levelSum := make(map[time.Month]float64)
	levelCount := make(map[time.Month]int)

	for _, p := range series.Points {
		key := monthKey{p.Date.Year(), p.Date.Month()}
		if _, seen := monthEnd[key]; !seen {
			order = append(order, key)
		}
		monthEnd[key] = p.Value
		levelSum[p.Date.Month()] += p.Value
		levelCount[p.Date.Month()]++
	}

	changeSum := make(map[time.Month]float64)
	changeCount := make(map[time.Month]int)
	for i := 1; i < len(order); i++ {
		prev, cur := order[i-1], order[i]
		changeSum[cur.month] += monthEnd[cur] - monthEnd[prev]
		changeCount[cur.month]++
	}

	var stats []MonthStat
	for m := time.January; m <= time.December; m++ {
		if levelCount[m] == 0 {
			continue
		}
		stat := MonthStat{
			Month:     m,
			MeanLevel: levelSum[m] / float64(levelCount[m]),
			Count:     levelCount[m],
		}
		if changeCount[m] > 0 {
			stat.MeanChange = changeSum[m] / float64(changeCount[m])
		}
		stats = append(stats, stat)
	}
	return stats
}
