package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDepositAndBuy(t *testing.T) {
	p := NewPortfolio(decimal.Zero)
	if err := p.Deposit(decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	qty, err := p.Buy("QQQ", decimal.NewFromInt(800), 400)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if !qty.Equal(decimal.NewFromInt(2)) {
		t.Errorf("qty = %s, want 2", qty)
	}
	if !p.Cash.Equal(decimal.NewFromInt(200)) {
		t.Errorf("cash = %s, want 200", p.Cash)
	}
}

func TestBuyDustSkipped(t *testing.T) {
	p := NewPortfolio(decimal.NewFromInt(100))
	qty, err := p.Buy("QQQ", decimal.NewFromFloat(0.99), 400)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if !qty.IsZero() {
		t.Errorf("dust buy executed, qty = %s", qty)
	}
	if !p.Cash.Equal(decimal.NewFromInt(100)) {
		t.Errorf("cash touched by dust buy: %s", p.Cash)
	}
}

func TestBuyErrors(t *testing.T) {
	p := NewPortfolio(decimal.NewFromInt(100))
	if _, err := p.Buy("QQQ", decimal.NewFromInt(200), 400); !errors.Is(err, ErrInsufficientCash) {
		t.Errorf("overspend err = %v, want ErrInsufficientCash", err)
	}
	if _, err := p.Buy("QQQ", decimal.NewFromInt(50), 0); err == nil {
		t.Error("zero price buy succeeded")
	}
}

func TestSellAndOversell(t *testing.T) {
	p := NewPortfolio(decimal.NewFromInt(1000))
	if _, err := p.Buy("SGOV", decimal.NewFromInt(1000), 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	if err := p.Sell("SGOV", decimal.NewFromInt(4), 110); err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if !p.Cash.Equal(decimal.NewFromInt(440)) {
		t.Errorf("cash after sell = %s, want 440", p.Cash)
	}

	if err := p.Sell("SGOV", decimal.NewFromInt(100), 110); !errors.Is(err, ErrOversell) {
		t.Errorf("oversell err = %v, want ErrOversell", err)
	}
}

func TestSellFractionAndLiquidate(t *testing.T) {
	p := NewPortfolio(decimal.NewFromInt(1000))
	if _, err := p.Buy("SGOV", decimal.NewFromInt(1000), 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	if err := p.SellFraction("SGOV", 0.5, 100); err != nil {
		t.Fatalf("SellFraction: %v", err)
	}
	if !p.Shares["SGOV"].Equal(decimal.NewFromInt(5)) {
		t.Errorf("shares after half sell = %s, want 5", p.Shares["SGOV"])
	}

	if err := p.Liquidate("SGOV", 100); err != nil {
		t.Fatalf("Liquidate: %v", err)
	}
	if !p.Shares["SGOV"].IsZero() {
		t.Errorf("shares after liquidate = %s, want 0", p.Shares["SGOV"])
	}
	if !p.Cash.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("cash after liquidate = %s, want 1000", p.Cash)
	}
}

func TestMarketValue(t *testing.T) {
	p := NewPortfolio(decimal.NewFromInt(100))
	if _, err := p.Buy("QQQ", decimal.NewFromInt(80), 40); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	total := p.MarketValue(map[string]float64{"QQQ": 50})
	// 20 cash + 2 shares * 50.
	if !total.Equal(decimal.NewFromInt(120)) {
		t.Errorf("MarketValue = %s, want 120", total)
	}
}

func TestViewIsSnapshot(t *testing.T) {
	p := NewPortfolio(decimal.NewFromInt(500))
	if _, err := p.Buy("QQQ", decimal.NewFromInt(400), 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	view := p.View()
	view.Shares["QQQ"] = decimal.NewFromInt(999)
	if p.Shares["QQQ"].Equal(decimal.NewFromInt(999)) {
		t.Error("mutating the view changed the portfolio")
	}
	if !view.HasShares("QQQ") {
		t.Error("HasShares(QQQ) = false after buy")
	}
	if view.HasShares("SGOV") {
		t.Error("HasShares(SGOV) = true with no position")
	}
}
