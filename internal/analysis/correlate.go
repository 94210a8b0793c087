package analysis

import (
	"fmt"
	"math"

	"macro-backtest/internal/model"
)

// CorrelationReport is a pairwise comparison of two series on their shared
// dates.
type CorrelationReport struct {
	Overlap int
	Pearson float64
}

// Correlation aligns two series on shared dates and computes the Pearson
// correlation of their values. At least two overlapping observations are
// required.
func Correlation(a, b model.Series) (CorrelationReport, error) {
	xs, ys := alignValues(a, b)
	if len(xs) < 2 {
		return CorrelationReport{}, fmt.Errorf("need at least 2 overlapping observations, have %d", len(xs))
	}
	r := pearson(xs, ys)
	if math.IsNaN(r) {
		return CorrelationReport{}, fmt.Errorf("correlation undefined (zero variance)")
	}
	return CorrelationReport{Overlap: len(xs), Pearson: r}, nil
}

// RollingCorrelation computes the Pearson correlation over a trailing window
// of shared observations. Entries before the window fills are NaN.
func RollingCorrelation(a, b model.Series, window int) ([]float64, error) {
	if window < 2 {
		return nil, fmt.Errorf("window must be at least 2, got %d", window)
	}
	xs, ys := alignValues(a, b)
	out := make([]float64, len(xs))
	for i := range out {
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		out[i] = pearson(xs[i+1-window:i+1], ys[i+1-window:i+1])
	}
	return out, nil
}

func alignValues(a, b model.Series) (xs, ys []float64) {
	for _, p := range a.Points {
		if v, ok := b.At(p.Date); ok {
			xs = append(xs, p.Value)
			ys = append(ys, v)
		}
	}
	return xs, ys
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}
