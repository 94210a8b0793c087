package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeDeposit  = errors.New("deposit must be >= 0")
	ErrInsufficientCash = errors.New("insufficient cash for buy")
	ErrOversell         = errors.New("sell quantity exceeds position")
)

// DustThreshold is the smallest order the simulator bothers executing.
// Buy amounts at or below one dollar are skipped.
var DustThreshold = decimal.NewFromInt(1)

// Portfolio is the simulator's mutable state: one cash balance plus share
// balances per symbol. All money math is decimal; prices arrive as float64
// from the series layer and are converted at the boundary.
type Portfolio struct {
	Cash   decimal.Decimal
	Shares map[string]decimal.Decimal
}

// PortfolioView is a read-only snapshot handed to strategies.
type PortfolioView struct {
	Cash   decimal.Decimal
	Shares map[string]decimal.Decimal
}

func NewPortfolio(initialCash decimal.Decimal) *Portfolio {
	return &Portfolio{
		Cash:   initialCash,
		Shares: make(map[string]decimal.Decimal),
	}
}

func (p *Portfolio) View() PortfolioView {
	shares := make(map[string]decimal.Decimal, len(p.Shares))
	for sym, qty := range p.Shares {
		shares[sym] = qty
	}
	return PortfolioView{Cash: p.Cash, Shares: shares}
}

// Deposit adds the periodic contribution.
func (p *Portfolio) Deposit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeDeposit
	}
	p.Cash = p.Cash.Add(amount)
	return nil
}

// Buy spends amount of cash on the symbol at execPrice. Amounts at or below
// the dust threshold are silently skipped, matching the simulator's "don't
// place $1 orders" rule. Returns the quantity bought.
func (p *Portfolio) Buy(symbol string, amount decimal.Decimal, execPrice float64) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(DustThreshold) {
		return decimal.Zero, nil
	}
	if amount.GreaterThan(p.Cash) {
		return decimal.Zero, fmt.Errorf("buy %s for %s with cash %s: %w", symbol, amount, p.Cash, ErrInsufficientCash)
	}
	price := decimal.NewFromFloat(execPrice)
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("buy %s: non-positive exec price %s", symbol, price)
	}
	qty := amount.Div(price)
	p.Shares[symbol] = p.Shares[symbol].Add(qty)
	p.Cash = p.Cash.Sub(amount)
	return qty, nil
}

// Sell disposes qty shares of symbol at price, crediting the proceeds.
func (p *Portfolio) Sell(symbol string, qty decimal.Decimal, price float64) error {
	held := p.Shares[symbol]
	if qty.GreaterThan(held) {
		return fmt.Errorf("sell %s qty %s held %s: %w", symbol, qty, held, ErrOversell)
	}
	p.Shares[symbol] = held.Sub(qty)
	p.Cash = p.Cash.Add(qty.Mul(decimal.NewFromFloat(price)))
	return nil
}

// SellFraction sells the given fraction of the current position.
func (p *Portfolio) SellFraction(symbol string, fraction, price float64) error {
	if fraction <= 0 {
		return nil
	}
	if fraction > 1 {
		fraction = 1
	}
	qty := p.Shares[symbol].Mul(decimal.NewFromFloat(fraction))
	return p.Sell(symbol, qty, price)
}

// Liquidate sells the whole position in symbol at price.
func (p *Portfolio) Liquidate(symbol string, price float64) error {
	return p.Sell(symbol, p.Shares[symbol], price)
}

// PositionValue marks one leg to market.
func (p *Portfolio) PositionValue(symbol string, price float64) decimal.Decimal {
	return p.Shares[symbol].Mul(decimal.NewFromFloat(price))
}

// MarketValue marks the whole portfolio to market with the given prices.
// Symbols without a quote contribute nothing.
func (p *Portfolio) MarketValue(prices map[string]float64) decimal.Decimal {
	total := p.Cash
	for sym, qty := range p.Shares {
		price, ok := prices[sym]
		if !ok {
			continue
		}
		total = total.Add(qty.Mul(decimal.NewFromFloat(price)))
	}
	return total
}

// HasShares reports whether any shares of symbol are held.
func (v PortfolioView) HasShares(symbol string) bool {
	return v.Shares[symbol].IsPositive()
}
