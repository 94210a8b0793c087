package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"macro-backtest/internal/model"
	"macro-backtest/internal/strategy"
)

// Params configure one simulation run.
type Params struct {
	RiskSymbol string
	SafeSymbol string

	InitialCash  decimal.Decimal
	WeeklyBudget decimal.Decimal

	// Slippage penalizes buy executions: exec = close * (1 + Slippage).
	// Sells always execute at the raw close.
	Slippage float64

	// TradeWeekday restricts daily frames to one trading day per week.
	// Weekly-resampled frames trade every row regardless.
	TradeWeekday time.Weekday
	// EveryRow disables the weekday filter (for weekly frames).
	EveryRow bool
}

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run replays the strategy over the frame, one row at a time, strictly in
// order. A row never sees data from rows after it; the only forward state is
// the portfolio itself.
func (e *Engine) Run(frame *model.Frame, strat strategy.Strategy, params Params) (*Result, error) {
	if frame == nil {
		return nil, fmt.Errorf("frame is nil")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if params.RiskSymbol == "" || params.SafeSymbol == "" {
		return nil, fmt.Errorf("risk and safe symbols are required")
	}

	port := model.NewPortfolio(params.InitialCash)
	ledger := make([]LedgerRow, 0, len(frame.Rows))

	for idx, row := range frame.Rows {
		if !params.EveryRow && row.Date.Weekday() != params.TradeWeekday {
			continue
		}

		dec := strat.Decide(strategy.Context{
			Index:     idx,
			Row:       row,
			Portfolio: port.View(),
		})
		if dec.Signal == model.SignalSkip {
			continue
		}
		if dec.RiskWeight+dec.SafeWeight > 1+1e-9 {
			return nil, fmt.Errorf("step %d: buy weights exceed cash (%f+%f)", idx, dec.RiskWeight, dec.SafeWeight)
		}

		// Contribution lands before the decision executes (DCA invariant).
		if err := port.Deposit(params.WeeklyBudget); err != nil {
			return nil, fmt.Errorf("step %d deposit: %w", idx, err)
		}

		if err := e.execute(port, dec, row, params); err != nil {
			return nil, fmt.Errorf("step %d execute: %w", idx, err)
		}

		// Record the momentum the decision actually saw: strategies treat a
		// not-yet-populated momentum as zero.
		rateMom := row.RefRateMom
		if math.IsNaN(rateMom) {
			rateMom = 0
		}

		ledger = append(ledger, LedgerRow{
			Index:      idx,
			Date:       row.Date,
			Signal:     dec.Signal,
			TotalValue: port.MarketValue(map[string]float64{params.RiskSymbol: row.RiskClose, params.SafeSymbol: row.SafeClose}),
			RiskValue:  port.PositionValue(params.RiskSymbol, row.RiskClose),
			SafeValue:  port.PositionValue(params.SafeSymbol, row.SafeClose),
			Cash:       port.Cash,
			Price:      row.RiskClose,
			RefMA:      row.RefMA,
			Drawdown:   row.Drawdown,
			RateMom:    rateMom,
		})
	}

	res := &Result{
		Ledger:         ledger,
		Metrics:        computeMetrics(ledger, params),
		FinalPortfolio: port.View(),
	}
	return res, nil
}

// execute applies one decision: liquidations and rotations at the raw close,
// then buys at the slipped close, both legs sized off the same cash snapshot.
func (e *Engine) execute(port *model.Portfolio, dec strategy.Decision, row model.Row, params Params) error {
	if dec.RebalanceAll {
		if err := port.Liquidate(params.RiskSymbol, row.RiskClose); err != nil {
			return err
		}
		if err := port.Liquidate(params.SafeSymbol, row.SafeClose); err != nil {
			return err
		}
	} else {
		if dec.LiquidateRisk {
			if err := port.Liquidate(params.RiskSymbol, row.RiskClose); err != nil {
				return err
			}
		}
		if dec.SellSafeFrac > 0 {
			if err := port.SellFraction(params.SafeSymbol, dec.SellSafeFrac, row.SafeClose); err != nil {
				return err
			}
		}
	}

	cash := port.Cash
	buyRisk := cash.Mul(decimal.NewFromFloat(dec.RiskWeight))
	buySafe := cash.Mul(decimal.NewFromFloat(dec.SafeWeight))

	slip := 1 + params.Slippage
	if _, err := port.Buy(params.RiskSymbol, buyRisk, row.RiskClose*slip); err != nil {
		return err
	}
	if _, err := port.Buy(params.SafeSymbol, buySafe, row.SafeClose*slip); err != nil {
		return err
	}
	return nil
}

func computeMetrics(ledger []LedgerRow, params Params) Metrics {
	m := Metrics{Steps: len(ledger), MaxDrawdown: math.NaN()}
	if len(ledger) == 0 {
		m.Invested = decimal.Zero
		m.FinalValue = decimal.Zero
		m.Profit = decimal.Zero
		return m
	}

	m.Invested = params.InitialCash.Add(params.WeeklyBudget.Mul(decimal.NewFromInt(int64(len(ledger)))))
	m.FinalValue = ledger[len(ledger)-1].TotalValue
	m.Profit = m.FinalValue.Sub(m.Invested)
	if m.Invested.IsPositive() {
		m.ROI = m.Profit.Div(m.Invested).InexactFloat64()
	}

	for _, r := range ledger {
		if math.IsNaN(r.Drawdown) {
			continue
		}
		if math.IsNaN(m.MaxDrawdown) || r.Drawdown < m.MaxDrawdown {
			m.MaxDrawdown = r.Drawdown
		}
	}
	return m
}
