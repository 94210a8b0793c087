package strategy

import "macro-backtest/internal/model"

// Context is everything a strategy may look at on one trading step: the
// current row of the joined frame and a snapshot of the portfolio. Rows carry
// lagged Ref columns; a strategy must not derive anything the row does not
// already contain.
type Context struct {
	Index     int
	Row       model.Row
	Portfolio model.PortfolioView
}

// Decision describes what to do with the step's cash. Liquidations and
// rotations execute first, at the raw close; the buy weights then apply to
// the resulting cash balance. RiskWeight+SafeWeight must not exceed 1.
type Decision struct {
	Signal model.Signal

	// LiquidateRisk sells the whole risk position before buying.
	LiquidateRisk bool
	// SellSafeFrac sells this fraction of the safe position before buying.
	SellSafeFrac float64
	// RebalanceAll liquidates both legs so the buy weights re-split the
	// whole portfolio, not just this step's contribution.
	RebalanceAll bool

	RiskWeight float64
	SafeWeight float64
}

type Strategy interface {
	Name() string
	Decide(ctx Context) Decision
}

// Skip is the decision for a row whose inputs are not ready; the engine
// passes over it without depositing or trading.
func Skip() Decision {
	return Decision{Signal: model.SignalSkip}
}
