package model

// Signal labels the decision taken on a trading step. Keep these values
// stable; they are written to CSV ledgers verbatim.
type Signal string

const (
	// Weekly trend policy.
	SignalRateShock Signal = "RATE_SHOCK"
	SignalKraken    Signal = "KRAKEN"
	SignalBull      Signal = "BULL"
	SignalBear      Signal = "BEAR"
	SignalWait      Signal = "WAIT"

	// Traffic-light policy.
	SignalRed    Signal = "RED"
	SignalYellow Signal = "YELLOW"
	SignalGreen  Signal = "GREEN"
	SignalPanic  Signal = "PANIC"

	// SignalSkip marks a row whose reference columns are not populated yet;
	// the engine passes over it without depositing or trading.
	SignalSkip Signal = "SKIP"
)
