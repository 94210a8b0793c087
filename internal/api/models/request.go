package models

// BacktestRequest represents the request body for running a backtest
type BacktestRequest struct {
	DataSource DataSourceConfig `json:"data_source" binding:"required"`
	Config     BacktestConfig   `json:"config,omitempty"`
	Periods    []PeriodSpec     `json:"periods,omitempty"`
	Options    BacktestOptions  `json:"options,omitempty"`
}

// DataSourceConfig defines where market data comes from
type DataSourceConfig struct {
	Type       string `json:"type" binding:"required"` // "csv" or "remote"
	Dir        string `json:"dir,omitempty"`           // csv: data directory
	RiskSymbol string `json:"risk_symbol,omitempty"`   // default: QQQ
	SafeSymbol string `json:"safe_symbol,omitempty"`   // default: SGOV
	StartDate  string `json:"start_date,omitempty"`    // remote: YYYY-MM-DD
	EndDate    string `json:"end_date,omitempty"`      // remote: YYYY-MM-DD
}

// BacktestConfig contains simulation and strategy overrides. Zero fields
// keep their defaults.
type BacktestConfig struct {
	InitialCash        float64        `json:"initial_cash,omitempty"`
	WeeklyBudget       float64        `json:"weekly_budget,omitempty"`
	TradeWeekday       string         `json:"trade_weekday,omitempty"`
	Slippage           float64        `json:"slippage,omitempty"`
	MAWindow           int            `json:"ma_window,omitempty"`
	MomWindow          int            `json:"mom_window,omitempty"`
	CrashThreshold     float64        `json:"crash_threshold,omitempty"`
	RateShockThreshold float64        `json:"rate_shock_threshold,omitempty"`
	Strategy           StrategyConfig `json:"strategy,omitempty"`
}

// StrategyConfig defines strategy and its parameters
type StrategyConfig struct {
	Name   string                 `json:"name,omitempty"` // "trend" (default) or "lights"
	Params map[string]interface{} `json:"params,omitempty"`
}

// PeriodSpec is one backtest window
type PeriodSpec struct {
	Label string `json:"label,omitempty"`
	Start string `json:"start" binding:"required"` // YYYY-MM-DD
	End   string `json:"end" binding:"required"`   // YYYY-MM-DD
}

// BacktestOptions contains optional backtest parameters
type BacktestOptions struct {
	LimitRows     int  `json:"limit_rows,omitempty"`     // 0 = all
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
}

// SignalRequest represents query parameters for the signal endpoint
type SignalRequest struct {
	Dir      string `form:"dir,omitempty"`
	Symbol   string `form:"symbol,omitempty"`    // default: QQQ
	MAWindow int    `form:"ma_window,omitempty"` // default: 20
}
