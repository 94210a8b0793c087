package strategy

import (
	"math"

	"macro-backtest/internal/model"
)

// LightsParams tune the traffic-light policy.
type LightsParams struct {
	// MABuffer shifts the stop-out line below the MA; 0.99 means the light
	// only turns red once price loses 1% below trend.
	MABuffer float64
	// PanicSpread is the high-yield spread level (percentage points) above
	// which the macro light overrides everything.
	PanicSpread float64

	GreenRiskWeight float64
	GreenSafeWeight float64
}

func DefaultLightsParams() LightsParams {
	return LightsParams{
		MABuffer:        0.99,
		PanicSpread:     5.0,
		GreenRiskWeight: 0.50,
		GreenSafeWeight: 0.50,
	}
}

// LightsStrategy is the weekly traffic-light policy over a weekly-resampled
// frame. The technical light compares the week's close to its MA: red below
// the buffered MA, yellow between buffer and MA, green above. A high-yield
// spread above the panic level forces risk-off regardless of the light.
//
//   - red / panic: liquidate risk, everything into safe.
//   - yellow:      hold the risk position but park new cash in safe.
//   - green:       full rebalance of the whole portfolio to 50/50.
type LightsStrategy struct {
	Params LightsParams
}

func NewLightsStrategy(params LightsParams) *LightsStrategy {
	if params == (LightsParams{}) {
		params = DefaultLightsParams()
	}
	return &LightsStrategy{Params: params}
}

func (s *LightsStrategy) Name() string { return "lights" }

func (s *LightsStrategy) Decide(ctx Context) Decision {
	row := ctx.Row
	if math.IsNaN(row.MA) || row.RiskClose <= 0 {
		return Skip()
	}

	macroPanic := row.HYSpread > s.Params.PanicSpread
	red := row.RiskClose < row.MA*s.Params.MABuffer

	switch {
	case macroPanic:
		return Decision{Signal: model.SignalPanic, LiquidateRisk: true, SafeWeight: 1}
	case red:
		return Decision{Signal: model.SignalRed, LiquidateRisk: true, SafeWeight: 1}
	case row.RiskClose < row.MA:
		return Decision{Signal: model.SignalYellow, SafeWeight: 1}
	default:
		return Decision{
			Signal:       model.SignalGreen,
			RebalanceAll: true,
			RiskWeight:   s.Params.GreenRiskWeight,
			SafeWeight:   s.Params.GreenSafeWeight,
		}
	}
}
