package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"macro-backtest/internal/model"
)

// LedgerRow is one trading step of output: the post-trade mark-to-market
// snapshot plus the signal context that produced it. This is the primary
// "what happened" artifact of a backtest.
type LedgerRow struct {
	Index int
	Date  time.Time

	Signal model.Signal

	TotalValue decimal.Decimal
	RiskValue  decimal.Decimal
	SafeValue  decimal.Decimal
	Cash       decimal.Decimal

	// Signal context at decision time.
	Price    float64
	RefMA    float64
	Drawdown float64
	RateMom  float64
}

// Metrics summarise one backtest window.
type Metrics struct {
	Steps      int
	Invested   decimal.Decimal
	FinalValue decimal.Decimal
	Profit     decimal.Decimal
	ROI        float64
	// MaxDrawdown is the deepest lag-safe drawdown seen on traded rows
	// (fraction, <= 0).
	MaxDrawdown float64
}

// Result bundles the ledger with its summary metrics.
type Result struct {
	Ledger  []LedgerRow
	Metrics Metrics
	// FinalPortfolio is the terminal state, useful for chained inspection.
	FinalPortfolio model.PortfolioView
}

// PeriodResult is one window of a batch run.
type PeriodResult struct {
	Period model.Period
	Result *Result
}
