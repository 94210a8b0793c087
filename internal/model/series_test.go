package model

import (
	"math"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seriesOf(start time.Time, values ...float64) Series {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Date: start.AddDate(0, 0, i), Value: v}
	}
	return NewSeries(points)
}

func almostEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < 1e-9
}

func TestRollingMeanWarmup(t *testing.T) {
	s := seriesOf(day(2024, time.January, 1), 1, 2, 3, 4, 5)
	got := s.RollingMean(3)
	want := []float64{math.NaN(), math.NaN(), 2, 3, 4}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("RollingMean[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPctChange(t *testing.T) {
	s := seriesOf(day(2024, time.January, 1), 100, 0, 110, 121, 0)
	got := s.PctChange(2)
	// index 0,1: warm-up; index 2: (110-100)/100; index 3: base 0 -> NaN;
	// index 4: (0-110)/110.
	want := []float64{math.NaN(), math.NaN(), 0.10, math.NaN(), -1}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("PctChange[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestShiftAndCumMax(t *testing.T) {
	shifted := Shift([]float64{10, 20, 30}, 1)
	if !math.IsNaN(shifted[0]) || shifted[1] != 10 || shifted[2] != 20 {
		t.Errorf("Shift = %v, want [NaN 10 20]", shifted)
	}

	cm := CumMax([]float64{math.NaN(), 5, 3, 7, 6})
	want := []float64{math.NaN(), 5, 5, 7, 7}
	for i := range want {
		if !almostEqual(cm[i], want[i]) {
			t.Errorf("CumMax[%d] = %v, want %v", i, cm[i], want[i])
		}
	}
}

func TestResampleWeeklyStampsWeekEnd(t *testing.T) {
	// Mon 2024-01-01 .. Wed 2024-01-10. Weeks ending Friday:
	// Jan 1-5 bucket -> stamped Fri Jan 5, value from Jan 5;
	// Jan 8-10 bucket -> stamped Fri Jan 12, value from Jan 10.
	s := seriesOf(day(2024, time.January, 1), 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	weekly := s.ResampleWeekly(time.Friday)

	if weekly.Len() != 2 {
		t.Fatalf("weekly.Len() = %d, want 2", weekly.Len())
	}
	if !weekly.Points[0].Date.Equal(day(2024, time.January, 5)) || weekly.Points[0].Value != 5 {
		t.Errorf("week 0 = %v %v, want 2024-01-05 5", weekly.Points[0].Date, weekly.Points[0].Value)
	}
	if !weekly.Points[1].Date.Equal(day(2024, time.January, 12)) || weekly.Points[1].Value != 10 {
		t.Errorf("week 1 = %v %v, want 2024-01-12 10", weekly.Points[1].Date, weekly.Points[1].Value)
	}
}

func TestCombineFirstPrefersReceiver(t *testing.T) {
	newer := NewSeries([]Point{
		{Date: day(2024, time.March, 1), Value: 100},
		{Date: day(2024, time.March, 2), Value: 101},
	})
	older := NewSeries([]Point{
		{Date: day(2024, time.February, 28), Value: 90},
		{Date: day(2024, time.March, 1), Value: 95},
	})

	combined := newer.CombineFirst(older)
	if combined.Len() != 3 {
		t.Fatalf("combined.Len() = %d, want 3", combined.Len())
	}
	if v, _ := combined.At(day(2024, time.March, 1)); v != 100 {
		t.Errorf("overlap date = %v, want receiver's 100", v)
	}
	if v, _ := combined.At(day(2024, time.February, 28)); v != 90 {
		t.Errorf("fill date = %v, want 90", v)
	}
}

func TestAsOfForwardFill(t *testing.T) {
	s := NewSeries([]Point{
		{Date: day(2024, time.January, 3), Value: 1},
		{Date: day(2024, time.January, 10), Value: 2},
	})

	tests := []struct {
		date   time.Time
		want   float64
		wantOK bool
	}{
		{day(2024, time.January, 2), 0, false},
		{day(2024, time.January, 3), 1, true},
		{day(2024, time.January, 7), 1, true},
		{day(2024, time.January, 10), 2, true},
		{day(2024, time.February, 1), 2, true},
	}
	for _, tt := range tests {
		got, ok := s.AsOf(tt.date)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("AsOf(%s) = %v,%v want %v,%v", tt.date.Format("2006-01-02"), got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestClipHalfOpen(t *testing.T) {
	s := seriesOf(day(2024, time.January, 1), 1, 2, 3, 4, 5)
	clipped := s.Clip(day(2024, time.January, 2), day(2024, time.January, 4))
	if clipped.Len() != 2 {
		t.Fatalf("clipped.Len() = %d, want 2", clipped.Len())
	}
	if clipped.Points[0].Value != 2 || clipped.Points[1].Value != 3 {
		t.Errorf("clipped values = %v,%v want 2,3", clipped.Points[0].Value, clipped.Points[1].Value)
	}
}
