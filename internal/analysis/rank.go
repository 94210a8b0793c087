package analysis

import (
	"fmt"
	"sort"

	"macro-backtest/internal/backtest"
	"macro-backtest/internal/model"
	"macro-backtest/internal/strategy"
)

// Variant is one named strategy configuration to rank.
type Variant struct {
	Name     string
	Strategy strategy.Strategy
}

// Ranking is one variant's full-window performance.
type Ranking struct {
	Rank    int
	Name    string
	Metrics backtest.Metrics
}

// RankStrategies runs every variant over the same frame with identical
// engine parameters and sorts the results by ROI, best first. Ties break
// alphabetically so the order is stable.
func RankStrategies(frame *model.Frame, variants []Variant, params backtest.Params) ([]Ranking, error) {
	engine := backtest.New()

	rankings := make([]Ranking, 0, len(variants))
	for _, v := range variants {
		result, err := engine.Run(frame, v.Strategy, params)
		if err != nil {
			return nil, fmt.Errorf("run variant %s: %w", v.Name, err)
		}
		rankings = append(rankings, Ranking{Name: v.Name, Metrics: result.Metrics})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Metrics.ROI != rankings[j].Metrics.ROI {
			return rankings[i].Metrics.ROI > rankings[j].Metrics.ROI
		}
		return rankings[i].Name < rankings[j].Name
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings, nil
}
