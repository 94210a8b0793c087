package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"macro-backtest/internal/backtest"
	"macro-backtest/internal/model"
	"macro-backtest/internal/strategy"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load backtest parameters from a separate YAML (e.g. examples/backtests/*.yaml).
	// If both BacktestFile and Backtest are provided, Backtest overrides BacktestFile.
	BacktestFile string         `yaml:"backtest_file"`
	Data         DataConfig     `yaml:"data"`
	Backtest     BacktestConfig `yaml:"backtest"`
	Strategy     StrategyConfig `yaml:"strategy"`
	Periods      []PeriodConfig `yaml:"periods"`
}

type DataConfig struct {
	Dir        string   `yaml:"dir"`
	RiskSymbol string   `yaml:"risk_symbol"`
	SafeSymbol string   `yaml:"safe_symbol"`
	FREDSeries []string `yaml:"fred_series"`
	Years      int      `yaml:"years"`
}

type BacktestConfig struct {
	InitialCash        float64 `yaml:"initial_cash"`
	WeeklyBudget       float64 `yaml:"weekly_budget"`
	TradeWeekday       string  `yaml:"trade_weekday"`
	Slippage           float64 `yaml:"slippage"`
	MAWindow           int     `yaml:"ma_window"`
	MomWindow          int     `yaml:"mom_window"`
	CrashThreshold     float64 `yaml:"crash_threshold"`
	RateShockThreshold float64 `yaml:"rate_shock_threshold"`
	SafeRotateFrac     float64 `yaml:"safe_rotate_frac"`
	BullRiskWeight     float64 `yaml:"bull_risk_weight"`
	BullSafeWeight     float64 `yaml:"bull_safe_weight"`
	BearRiskWeight     float64 `yaml:"bear_risk_weight"`
	BearSafeWeight     float64 `yaml:"bear_safe_weight"`
	MABuffer           float64 `yaml:"ma_buffer"`
	PanicSpread        float64 `yaml:"panic_spread"`
}

type StrategyConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

type PeriodConfig struct {
	Label string `yaml:"label"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// If backtest_file is set, load it and merge in any explicit overrides from c.Backtest.
	if c.BacktestFile != "" {
		backtestPath := c.BacktestFile
		if !filepath.IsAbs(backtestPath) {
			// Prefer interpreting relative paths as relative to the config file directory,
			// but fall back to the provided path (relative to cwd) if that doesn't exist.
			cand := filepath.Join(filepath.Dir(path), backtestPath)
			if _, err := os.Stat(cand); err == nil {
				backtestPath = cand
			}
		}
		loaded, err := loadBacktestFile(backtestPath)
		if err != nil {
			return nil, err
		}
		c.Backtest = MergeBacktest(loaded, c.Backtest)
	}
	return &c, nil
}

// Default returns a ready-to-run configuration matching the original
// research settings: $1000 weekly budget, Tuesday trades, 5bps slippage,
// QQQ/SGOV legs, and yearly windows from 2006 through 2026.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.RiskSymbol == "" {
		c.Data.RiskSymbol = "QQQ"
	}
	if c.Data.SafeSymbol == "" {
		c.Data.SafeSymbol = "SGOV"
	}
	if len(c.Data.FREDSeries) == 0 {
		c.Data.FREDSeries = []string{"WRESBAL", "WTREGEN", "RRPONTSYD", "BAMLH0A0HYM2", "PCEPI"}
	}
	if c.Data.Years == 0 {
		c.Data.Years = 10
	}
	if c.Backtest.WeeklyBudget == 0 {
		c.Backtest.WeeklyBudget = 1000
	}
	if c.Backtest.TradeWeekday == "" {
		c.Backtest.TradeWeekday = "Tuesday"
	}
	if c.Backtest.Slippage == 0 {
		c.Backtest.Slippage = 0.0005
	}
	if c.Backtest.MAWindow == 0 {
		c.Backtest.MAWindow = 20
	}
	if c.Backtest.MomWindow == 0 {
		c.Backtest.MomWindow = 40
	}
	if c.Backtest.CrashThreshold == 0 {
		c.Backtest.CrashThreshold = -0.15
	}
	if c.Backtest.RateShockThreshold == 0 {
		c.Backtest.RateShockThreshold = 0.20
	}
	if c.Backtest.SafeRotateFrac == 0 {
		c.Backtest.SafeRotateFrac = 0.50
	}
	if c.Backtest.BullRiskWeight == 0 {
		c.Backtest.BullRiskWeight = 0.80
	}
	if c.Backtest.BullSafeWeight == 0 {
		c.Backtest.BullSafeWeight = 0.20
	}
	if c.Backtest.BearRiskWeight == 0 {
		c.Backtest.BearRiskWeight = 0.20
	}
	if c.Backtest.BearSafeWeight == 0 {
		c.Backtest.BearSafeWeight = 0.80
	}
	if c.Backtest.MABuffer == 0 {
		c.Backtest.MABuffer = 0.99
	}
	if c.Backtest.PanicSpread == 0 {
		c.Backtest.PanicSpread = 5.0
	}
	if c.Strategy.Name == "" {
		c.Strategy.Name = "trend"
	}
	if len(c.Periods) == 0 {
		for _, p := range model.YearlyPeriods(2006, 2026) {
			c.Periods = append(c.Periods, PeriodConfig{
				Label: p.Label,
				Start: p.Start.Format("2006-01-02"),
				End:   p.End.Format("2006-01-02"),
			})
		}
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Strategy.Name != "trend" && c.Strategy.Name != "lights" {
		return fmt.Errorf("strategy.name must be \"trend\" or \"lights\", got %q", c.Strategy.Name)
	}
	if c.Backtest.WeeklyBudget < 0 {
		return errors.New("backtest.weekly_budget must not be negative")
	}
	if c.Backtest.InitialCash < 0 {
		return errors.New("backtest.initial_cash must not be negative")
	}
	if c.Backtest.Slippage < 0 {
		return errors.New("backtest.slippage must not be negative")
	}
	if c.Backtest.MAWindow < 1 || c.Backtest.MomWindow < 1 {
		return errors.New("backtest.ma_window and backtest.mom_window must be positive")
	}
	if _, err := c.TradeWeekday(); err != nil {
		return err
	}
	if c.Backtest.BullRiskWeight+c.Backtest.BullSafeWeight > 1+1e-9 {
		return errors.New("bull allocation weights exceed 1")
	}
	if c.Backtest.BearRiskWeight+c.Backtest.BearSafeWeight > 1+1e-9 {
		return errors.New("bear allocation weights exceed 1")
	}
	if _, err := c.ToPeriods(); err != nil {
		return err
	}
	return nil
}

// TradeWeekday parses the configured weekday name.
func (c *Config) TradeWeekday() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(c.Backtest.TradeWeekday))
	days := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	day, ok := days[name]
	if !ok {
		return 0, fmt.Errorf("backtest.trade_weekday %q is not a weekday name", c.Backtest.TradeWeekday)
	}
	return day, nil
}

// ToPeriods converts the configured windows into model periods.
func (c *Config) ToPeriods() ([]model.Period, error) {
	periods := make([]model.Period, 0, len(c.Periods))
	for i, pc := range c.Periods {
		start, err := time.Parse("2006-01-02", pc.Start)
		if err != nil {
			return nil, fmt.Errorf("periods[%d].start: %w", i, err)
		}
		end, err := time.Parse("2006-01-02", pc.End)
		if err != nil {
			return nil, fmt.Errorf("periods[%d].end: %w", i, err)
		}
		if !end.After(start) {
			return nil, fmt.Errorf("periods[%d]: end must be after start", i)
		}
		label := pc.Label
		if label == "" {
			label = fmt.Sprintf("%s..%s", pc.Start, pc.End)
		}
		periods = append(periods, model.Period{Label: label, Start: start, End: end})
	}
	return periods, nil
}

// ToFrameOptions maps the indicator windows onto the frame builder.
func (c *Config) ToFrameOptions() model.FrameOptions {
	return model.FrameOptions{
		MAWindow:  c.Backtest.MAWindow,
		MomWindow: c.Backtest.MomWindow,
	}
}

// ToEngineParams maps the backtest section onto engine parameters. The
// weekday filter only applies to the trend strategy; the lights strategy
// walks a weekly-resampled frame and trades every row.
func (c *Config) ToEngineParams() (backtest.Params, error) {
	weekday, err := c.TradeWeekday()
	if err != nil {
		return backtest.Params{}, err
	}
	return backtest.Params{
		RiskSymbol:   c.Data.RiskSymbol,
		SafeSymbol:   c.Data.SafeSymbol,
		InitialCash:  decimal.NewFromFloat(c.Backtest.InitialCash),
		WeeklyBudget: decimal.NewFromFloat(c.Backtest.WeeklyBudget),
		Slippage:     c.Backtest.Slippage,
		TradeWeekday: weekday,
		EveryRow:     c.Strategy.Name == "lights",
	}, nil
}

// BuildStrategy constructs the configured strategy. Thresholds and
// allocations come from the backtest section; entries in strategy.params
// override them per strategy.
func (c *Config) BuildStrategy() (strategy.Strategy, error) {
	params := c.Strategy.Params
	switch c.Strategy.Name {
	case "trend":
		return strategy.NewTrendStrategy(c.Data.SafeSymbol, strategy.TrendParams{
			CrashThreshold:     paramNum(params, "crash_threshold", c.Backtest.CrashThreshold),
			RateShockThreshold: paramNum(params, "rate_shock_threshold", c.Backtest.RateShockThreshold),
			SafeRotateFrac:     paramNum(params, "safe_rotate_frac", c.Backtest.SafeRotateFrac),
			BullRiskWeight:     paramNum(params, "bull_risk_weight", c.Backtest.BullRiskWeight),
			BullSafeWeight:     paramNum(params, "bull_safe_weight", c.Backtest.BullSafeWeight),
			BearRiskWeight:     paramNum(params, "bear_risk_weight", c.Backtest.BearRiskWeight),
			BearSafeWeight:     paramNum(params, "bear_safe_weight", c.Backtest.BearSafeWeight),
		}), nil
	case "lights":
		return strategy.NewLightsStrategy(strategy.LightsParams{
			MABuffer:        paramNum(params, "ma_buffer", c.Backtest.MABuffer),
			PanicSpread:     paramNum(params, "panic_spread", c.Backtest.PanicSpread),
			GreenRiskWeight: paramNum(params, "green_risk_weight", 0.50),
			GreenSafeWeight: paramNum(params, "green_safe_weight", 0.50),
		}), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", c.Strategy.Name)
	}
}

// paramNum reads a numeric strategy parameter, falling back to def when the
// key is absent or not a number. YAML decodes whole numbers as int, JSON
// request bodies as float64.
func paramNum(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		}
	}
	return def
}

type backtestFileWrapper struct {
	Backtest BacktestConfig `yaml:"backtest"`
}

func loadBacktestFile(path string) (BacktestConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BacktestConfig{}, err
	}
	var w backtestFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return BacktestConfig{}, err
	}
	return w.Backtest, nil
}

// MergeBacktest overlays non-zero fields from override onto base.
// This is used when loading a backtest file and then applying overrides from the request.
func MergeBacktest(base, override BacktestConfig) BacktestConfig {
	out := base
	if override.InitialCash != 0 {
		out.InitialCash = override.InitialCash
	}
	if override.WeeklyBudget != 0 {
		out.WeeklyBudget = override.WeeklyBudget
	}
	if override.TradeWeekday != "" {
		out.TradeWeekday = override.TradeWeekday
	}
	if override.Slippage != 0 {
		out.Slippage = override.Slippage
	}
	if override.MAWindow != 0 {
		out.MAWindow = override.MAWindow
	}
	if override.MomWindow != 0 {
		out.MomWindow = override.MomWindow
	}
	if override.CrashThreshold != 0 {
		out.CrashThreshold = override.CrashThreshold
	}
	if override.RateShockThreshold != 0 {
		out.RateShockThreshold = override.RateShockThreshold
	}
	if override.SafeRotateFrac != 0 {
		out.SafeRotateFrac = override.SafeRotateFrac
	}
	if override.BullRiskWeight != 0 {
		out.BullRiskWeight = override.BullRiskWeight
	}
	if override.BullSafeWeight != 0 {
		out.BullSafeWeight = override.BullSafeWeight
	}
	if override.BearRiskWeight != 0 {
		out.BearRiskWeight = override.BearRiskWeight
	}
	if override.BearSafeWeight != 0 {
		out.BearSafeWeight = override.BearSafeWeight
	}
	if override.MABuffer != 0 {
		out.MABuffer = override.MABuffer
	}
	if override.PanicSpread != 0 {
		out.PanicSpread = override.PanicSpread
	}
	return out
}
