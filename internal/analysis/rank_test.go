package analysis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"macro-backtest/internal/backtest"
	"macro-backtest/internal/model"
	"macro-backtest/internal/strategy"
)

type fixedStrategy struct {
	name string
	dec  strategy.Decision
}

func (s *fixedStrategy) Name() string                            { return s.name }
func (s *fixedStrategy) Decide(strategy.Context) strategy.Decision { return s.dec }

func TestRankStrategiesOrdersByROI(t *testing.T) {
	// Rising risk price, flat safe price: the all-risk variant must win.
	frame := &model.Frame{}
	start := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		frame.Rows = append(frame.Rows, model.Row{
			Date:      start.AddDate(0, 0, 7*i),
			RiskClose: 100 + 10*float64(i),
			SafeClose: 100,
		})
	}

	variants := []Variant{
		{Name: "all-safe", Strategy: &fixedStrategy{name: "all-safe", dec: strategy.Decision{Signal: model.SignalBear, SafeWeight: 1}}},
		{Name: "all-risk", Strategy: &fixedStrategy{name: "all-risk", dec: strategy.Decision{Signal: model.SignalBull, RiskWeight: 1}}},
	}
	params := backtest.Params{
		RiskSymbol:   "QQQ",
		SafeSymbol:   "SGOV",
		WeeklyBudget: decimal.NewFromInt(1000),
		EveryRow:     true,
	}

	rankings, err := RankStrategies(frame, variants, params)
	if err != nil {
		t.Fatalf("RankStrategies: %v", err)
	}
	if len(rankings) != 2 {
		t.Fatalf("rankings = %d, want 2", len(rankings))
	}
	if rankings[0].Name != "all-risk" || rankings[0].Rank != 1 {
		t.Errorf("winner = %s (rank %d), want all-risk at rank 1", rankings[0].Name, rankings[0].Rank)
	}
	if rankings[0].Metrics.ROI <= rankings[1].Metrics.ROI {
		t.Errorf("winner ROI %v not above runner-up %v", rankings[0].Metrics.ROI, rankings[1].Metrics.ROI)
	}
}
