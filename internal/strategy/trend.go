package strategy

import (
	"math"

	"macro-backtest/internal/model"
)

// TrendParams tune the weekly trend policy. Zero values fall back to the
// research defaults.
type TrendParams struct {
	// CrashThreshold is the drawdown below which the crash-buy rotation
	// fires (e.g. -0.15).
	CrashThreshold float64
	// RateShockThreshold is the rate momentum above which everything goes
	// risk-off (e.g. 0.20 = +20% yield move over the momentum window).
	RateShockThreshold float64
	// SafeRotateFrac is the fraction of the safe position rotated into risk
	// on a crash-buy.
	SafeRotateFrac float64

	BullRiskWeight float64
	BullSafeWeight float64
	BearRiskWeight float64
	BearSafeWeight float64
}

func DefaultTrendParams() TrendParams {
	return TrendParams{
		CrashThreshold:     -0.15,
		RateShockThreshold: 0.20,
		SafeRotateFrac:     0.50,
		BullRiskWeight:     0.80,
		BullSafeWeight:     0.20,
		BearRiskWeight:     0.20,
		BearSafeWeight:     0.80,
	}
}

// TrendStrategy is the weekly DCA trend policy. Decisions are priority
// ordered; the first matching rule wins:
//
//  1. rate shock: yesterday's rate momentum above threshold, liquidate the
//     risk leg and put everything into the safe asset.
//  2. crash buy: drawdown below threshold while safe shares are held,
//     rotate half the safe position plus all cash into risk.
//  3. bull: yesterday's close above yesterday's MA, 80/20.
//  4. bear: otherwise, 20/80.
//
// All comparisons read the lagged Ref columns, never same-day values.
type TrendStrategy struct {
	SafeSymbol string
	Params     TrendParams
}

func NewTrendStrategy(safeSymbol string, params TrendParams) *TrendStrategy {
	if params == (TrendParams{}) {
		params = DefaultTrendParams()
	}
	return &TrendStrategy{SafeSymbol: safeSymbol, Params: params}
}

func (s *TrendStrategy) Name() string { return "trend" }

func (s *TrendStrategy) Decide(ctx Context) Decision {
	row := ctx.Row
	if math.IsNaN(row.RefClose) || math.IsNaN(row.RefMA) {
		return Skip()
	}

	rateMom := row.RefRateMom
	if math.IsNaN(rateMom) {
		rateMom = 0
	}

	if rateMom > s.Params.RateShockThreshold {
		return Decision{
			Signal:        model.SignalRateShock,
			LiquidateRisk: true,
			SafeWeight:    1,
		}
	}

	drawdown := row.Drawdown
	if !math.IsNaN(drawdown) && drawdown < s.Params.CrashThreshold && ctx.Portfolio.HasShares(s.SafeSymbol) {
		return Decision{
			Signal:       model.SignalKraken,
			SellSafeFrac: s.Params.SafeRotateFrac,
			RiskWeight:   1,
		}
	}

	if row.RefClose > row.RefMA {
		return Decision{
			Signal:     model.SignalBull,
			RiskWeight: s.Params.BullRiskWeight,
			SafeWeight: s.Params.BullSafeWeight,
		}
	}
	return Decision{
		Signal:     model.SignalBear,
		RiskWeight: s.Params.BearRiskWeight,
		SafeWeight: s.Params.BearSafeWeight,
	}
}
