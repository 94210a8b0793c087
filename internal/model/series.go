package model

import (
	"math"
	"sort"
	"time"
)

// Point is one dated observation of a series.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is a date-ordered value series. All derived-column helpers emit NaN
// for positions where the value is not yet defined (warm-up windows, shifted
// prefixes), so that downstream code can detect and skip incomplete rows.
type Series struct {
	Points []Point
}

func NewSeries(points []Point) Series {
	s := Series{Points: points}
	s.SortByDate()
	return s
}

func (s *Series) SortByDate() {
	sort.Slice(s.Points, func(i, j int) bool {
		return s.Points[i].Date.Before(s.Points[j].Date)
	})
}

func (s Series) Len() int { return len(s.Points) }

func (s Series) IsEmpty() bool { return len(s.Points) == 0 }

// Last returns the most recent point. ok is false for an empty series.
func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Clip returns the sub-series with start <= date < end.
func (s Series) Clip(start, end time.Time) Series {
	out := Series{}
	for _, p := range s.Points {
		if p.Date.Before(start) || !p.Date.Before(end) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// From returns the sub-series with date >= start.
func (s Series) From(start time.Time) Series {
	out := Series{}
	for _, p := range s.Points {
		if p.Date.Before(start) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// Values returns the raw value column.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// At looks up the value on an exact date.
func (s Series) At(date time.Time) (float64, bool) {
	day := normalizeDay(date)
	// Points are sorted; binary search on the day key.
	i := sort.Search(len(s.Points), func(i int) bool {
		return !normalizeDay(s.Points[i].Date).Before(day)
	})
	if i < len(s.Points) && normalizeDay(s.Points[i].Date).Equal(day) {
		return s.Points[i].Value, true
	}
	return 0, false
}

// AsOf returns the latest value observed at or before date (forward fill
// semantics: never a value published after the given date).
func (s Series) AsOf(date time.Time) (float64, bool) {
	day := normalizeDay(date)
	i := sort.Search(len(s.Points), func(i int) bool {
		return normalizeDay(s.Points[i].Date).After(day)
	})
	if i == 0 {
		return 0, false
	}
	return s.Points[i-1].Value, true
}

// CombineFirst prefers the receiver's observations and fills dates that only
// exist in other. Used to splice a short history onto a longer proxy
// (e.g. SGOV preferred, SHV filling the years before SGOV existed).
func (s Series) CombineFirst(other Series) Series {
	byDay := make(map[time.Time]float64, len(s.Points)+len(other.Points))
	for _, p := range other.Points {
		byDay[normalizeDay(p.Date)] = p.Value
	}
	for _, p := range s.Points {
		byDay[normalizeDay(p.Date)] = p.Value
	}
	out := Series{Points: make([]Point, 0, len(byDay))}
	for d, v := range byDay {
		out.Points = append(out.Points, Point{Date: d, Value: v})
	}
	out.SortByDate()
	return out
}

// RollingMean computes a simple moving average over the trailing window.
// The first window-1 positions are NaN.
func (s Series) RollingMean(window int) []float64 {
	out := make([]float64, len(s.Points))
	if window <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	sum := 0.0
	for i, p := range s.Points {
		sum += p.Value
		if i >= window {
			sum -= s.Points[i-window].Value
		}
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}

// PctChange computes the fractional change versus the value periods rows
// earlier. The first periods positions are NaN, as is any position whose
// base value is zero.
func (s Series) PctChange(periods int) []float64 {
	out := make([]float64, len(s.Points))
	for i := range s.Points {
		if i < periods || periods <= 0 {
			out[i] = math.NaN()
			continue
		}
		base := s.Points[i-periods].Value
		if base == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (s.Points[i].Value - base) / base
	}
	return out
}

// Shift lags the value column by n positions. The first n values are NaN.
func Shift(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < n {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i-n]
	}
	return out
}

// CumMax computes the running maximum, propagating NaN until the first real
// value arrives.
func CumMax(values []float64) []float64 {
	out := make([]float64, len(values))
	max := math.NaN()
	for i, v := range values {
		if !math.IsNaN(v) && (math.IsNaN(max) || v > max) {
			max = v
		}
		out[i] = max
	}
	return out
}

// ResampleWeekly keeps the last observation of each week, stamped on the
// given weekday the week ends on (W-FRI style buckets).
func (s Series) ResampleWeekly(weekEnd time.Weekday) Series {
	byWeek := make(map[time.Time]float64)
	for _, p := range s.Points {
		byWeek[weekEndingOn(p.Date, weekEnd)] = p.Value
	}
	out := Series{Points: make([]Point, 0, len(byWeek))}
	for d, v := range byWeek {
		out.Points = append(out.Points, Point{Date: d, Value: v})
	}
	out.SortByDate()
	return out
}

// ResampleYearEnd keeps the last observation of each calendar year, stamped
// on the year.
func (s Series) ResampleYearEnd() []YearPoint {
	byYear := make(map[int]float64)
	years := make(map[int]bool)
	for _, p := range s.Points {
		byYear[p.Date.Year()] = p.Value
		years[p.Date.Year()] = true
	}
	keys := make([]int, 0, len(years))
	for y := range years {
		keys = append(keys, y)
	}
	sort.Ints(keys)
	out := make([]YearPoint, 0, len(keys))
	for _, y := range keys {
		out = append(out, YearPoint{Year: y, Value: byYear[y]})
	}
	return out
}

// YearPoint is one year-end observation.
type YearPoint struct {
	Year  int
	Value float64
}

func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekEndingOn maps a date to the next (or same) occurrence of the weekday
// that closes its weekly bucket.
func weekEndingOn(t time.Time, weekEnd time.Weekday) time.Time {
	d := normalizeDay(t)
	offset := (int(weekEnd) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}
