package models

import "time"

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	Status  string          `json:"status"`
	Results []PeriodSummary `json:"results"`
	Ledger  []LedgerRow     `json:"ledger,omitempty"`
}

// PeriodSummary contains aggregated results for one window
type PeriodSummary struct {
	Label       string     `json:"label"`
	Window      TimeWindow `json:"window"`
	Steps       int        `json:"steps"`
	Invested    float64    `json:"invested"`
	FinalValue  float64    `json:"final_value"`
	Profit      float64    `json:"profit"`
	ROI         float64    `json:"roi"`
	MaxDrawdown float64    `json:"max_drawdown,omitempty"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LedgerRow represents one trading step in the backtest ledger
type LedgerRow struct {
	Index      int       `json:"index"`
	Date       time.Time `json:"date"`
	Signal     string    `json:"signal"`
	TotalValue float64   `json:"total_value"`
	RiskValue  float64   `json:"risk_value"`
	SafeValue  float64   `json:"safe_value"`
	Cash       float64   `json:"cash"`
	Price      float64   `json:"price"`
	RefMA      float64   `json:"ref_ma,omitempty"`
	Drawdown   float64   `json:"drawdown,omitempty"`
	RateMom    float64   `json:"rate_mom,omitempty"`
}

// SignalResponse is the current trend status for a symbol
type SignalResponse struct {
	Symbol      string    `json:"symbol"`
	Date        time.Time `json:"date"`
	Close       float64   `json:"close"`
	MA          float64   `json:"ma"`
	MAWindow    int       `json:"ma_window"`
	Above       bool      `json:"above"`
	DistancePct float64   `json:"distance_pct"`
	Streak      int       `json:"streak_weeks"`
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "string"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// SeriesInfo represents one downloadable series
type SeriesInfo struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	ID     string `json:"id"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
