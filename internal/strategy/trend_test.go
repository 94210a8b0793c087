package strategy

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"macro-backtest/internal/model"
)

func viewWithSafe(qty int64) model.PortfolioView {
	shares := map[string]decimal.Decimal{}
	if qty > 0 {
		shares["SGOV"] = decimal.NewFromInt(qty)
	}
	return model.PortfolioView{Shares: shares}
}

func TestTrendDecidePrecedence(t *testing.T) {
	strat := NewTrendStrategy("SGOV", TrendParams{})

	tests := []struct {
		name       string
		row        model.Row
		portfolio  model.PortfolioView
		wantSignal model.Signal
	}{
		{
			name:       "rate shock beats everything",
			row:        model.Row{RefClose: 80, RefMA: 100, RefRateMom: 0.25, Drawdown: -0.30},
			portfolio:  viewWithSafe(10),
			wantSignal: model.SignalRateShock,
		},
		{
			name:       "kraken on deep drawdown with safe shares",
			row:        model.Row{RefClose: 80, RefMA: 100, RefRateMom: 0.05, Drawdown: -0.20},
			portfolio:  viewWithSafe(10),
			wantSignal: model.SignalKraken,
		},
		{
			name:       "no kraken without safe shares",
			row:        model.Row{RefClose: 80, RefMA: 100, RefRateMom: 0.05, Drawdown: -0.20},
			portfolio:  viewWithSafe(0),
			wantSignal: model.SignalBear,
		},
		{
			name:       "bull above trend",
			row:        model.Row{RefClose: 110, RefMA: 100, RefRateMom: 0.05, Drawdown: -0.02},
			portfolio:  viewWithSafe(10),
			wantSignal: model.SignalBull,
		},
		{
			name:       "bear below trend",
			row:        model.Row{RefClose: 95, RefMA: 100, RefRateMom: 0.05, Drawdown: -0.05},
			portfolio:  viewWithSafe(10),
			wantSignal: model.SignalBear,
		},
		{
			name:       "equal close and MA is bear",
			row:        model.Row{RefClose: 100, RefMA: 100, RefRateMom: 0, Drawdown: 0},
			portfolio:  viewWithSafe(0),
			wantSignal: model.SignalBear,
		},
		{
			name:       "threshold rate momentum is not a shock",
			row:        model.Row{RefClose: 110, RefMA: 100, RefRateMom: 0.20, Drawdown: 0},
			portfolio:  viewWithSafe(0),
			wantSignal: model.SignalBull,
		},
		{
			name:       "threshold drawdown is not a kraken",
			row:        model.Row{RefClose: 110, RefMA: 100, RefRateMom: 0, Drawdown: -0.15},
			portfolio:  viewWithSafe(10),
			wantSignal: model.SignalBull,
		},
		{
			name:       "NaN rate momentum treated as zero",
			row:        model.Row{RefClose: 110, RefMA: 100, RefRateMom: math.NaN(), Drawdown: 0},
			portfolio:  viewWithSafe(0),
			wantSignal: model.SignalBull,
		},
		{
			name:       "NaN refs skip the row",
			row:        model.Row{RefClose: math.NaN(), RefMA: 100},
			portfolio:  viewWithSafe(0),
			wantSignal: model.SignalSkip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := strat.Decide(Context{Row: tt.row, Portfolio: tt.portfolio})
			if dec.Signal != tt.wantSignal {
				t.Errorf("signal = %s, want %s", dec.Signal, tt.wantSignal)
			}
		})
	}
}

func TestTrendDecisionShapes(t *testing.T) {
	strat := NewTrendStrategy("SGOV", TrendParams{})

	shock := strat.Decide(Context{
		Row:       model.Row{RefClose: 80, RefMA: 100, RefRateMom: 0.30},
		Portfolio: viewWithSafe(0),
	})
	if !shock.LiquidateRisk || shock.SafeWeight != 1 || shock.RiskWeight != 0 {
		t.Errorf("rate shock decision = %+v, want liquidate risk and all-safe", shock)
	}

	kraken := strat.Decide(Context{
		Row:       model.Row{RefClose: 80, RefMA: 100, RefRateMom: 0, Drawdown: -0.20},
		Portfolio: viewWithSafe(10),
	})
	if kraken.SellSafeFrac != 0.5 || kraken.RiskWeight != 1 || kraken.LiquidateRisk {
		t.Errorf("kraken decision = %+v, want half-safe rotation into risk", kraken)
	}

	bull := strat.Decide(Context{
		Row:       model.Row{RefClose: 110, RefMA: 100, RefRateMom: 0},
		Portfolio: viewWithSafe(0),
	})
	if bull.RiskWeight != 0.8 || bull.SafeWeight != 0.2 {
		t.Errorf("bull weights = %v/%v, want 0.8/0.2", bull.RiskWeight, bull.SafeWeight)
	}
}

func TestTrendZeroParamsFallBackToDefaults(t *testing.T) {
	strat := NewTrendStrategy("SGOV", TrendParams{})
	if strat.Params != DefaultTrendParams() {
		t.Errorf("params = %+v, want defaults", strat.Params)
	}

	custom := TrendParams{CrashThreshold: -0.10, RateShockThreshold: 0.30, SafeRotateFrac: 0.25,
		BullRiskWeight: 0.9, BullSafeWeight: 0.1, BearRiskWeight: 0.1, BearSafeWeight: 0.9}
	strat = NewTrendStrategy("SGOV", custom)
	if strat.Params != custom {
		t.Errorf("params = %+v, want custom values kept", strat.Params)
	}
}
