package handlers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"macro-backtest/internal/api/models"
	"macro-backtest/internal/backtest"
	"macro-backtest/internal/config"
	"macro-backtest/internal/data"
	"macro-backtest/internal/model"
)

// BacktestHandler handles backtest-related requests
type BacktestHandler struct{}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler() *BacktestHandler {
	return &BacktestHandler{}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	cfg, err := h.buildConfig(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_CONFIG",
				Message: err.Error(),
			},
		})
		return
	}

	inputs, err := h.fetchData(req.DataSource, cfg)
	if err != nil {
		if fe, ok := err.(*data.FetchError); ok {
			statusCode := http.StatusBadRequest
			if fe.StatusCode == http.StatusForbidden || fe.StatusCode == http.StatusUnauthorized {
				statusCode = http.StatusUnauthorized
			} else if fe.StatusCode == http.StatusTooManyRequests {
				statusCode = http.StatusTooManyRequests
			}
			c.JSON(statusCode, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    fe.Code,
					Message: fe.Message,
					Details: map[string]interface{}{
						"status_code": fe.StatusCode,
						"retry_after": fe.RetryAfter,
					},
				},
			})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "DATA_FETCH_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	frame, err := h.buildFrame(inputs, cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_DATA",
				Message: err.Error(),
			},
		})
		return
	}
	if req.Options.LimitRows > 0 && req.Options.LimitRows < len(frame.Rows) {
		frame = &model.Frame{Rows: frame.Rows[:req.Options.LimitRows]}
	}

	strat, err := cfg.BuildStrategy()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_STRATEGY",
				Message: err.Error(),
			},
		})
		return
	}
	params, err := cfg.ToEngineParams()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_CONFIG",
				Message: err.Error(),
			},
		})
		return
	}

	engine := backtest.New()
	response := models.BacktestResponse{Status: "completed"}

	if len(req.Periods) > 0 {
		periods, err := parsePeriods(req.Periods)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "INVALID_PERIODS",
					Message: err.Error(),
				},
			})
			return
		}
		results, err := engine.RunPeriods(frame, strat, params, periods, false)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "BACKTEST_ERROR",
					Message: err.Error(),
				},
			})
			return
		}
		for _, pr := range results {
			response.Results = append(response.Results, summarize(pr))
		}
	} else {
		result, err := engine.Run(frame, strat, params)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "BACKTEST_ERROR",
					Message: err.Error(),
				},
			})
			return
		}
		window := models.TimeWindow{}
		if len(result.Ledger) > 0 {
			window.Start = result.Ledger[0].Date
			window.End = result.Ledger[len(result.Ledger)-1].Date
		}
		response.Results = append(response.Results, summarize(backtest.PeriodResult{
			Period: model.Period{Label: "all", Start: window.Start, End: window.End},
			Result: result,
		}))
		if req.Options.IncludeLedger {
			response.Ledger = convertLedger(result.Ledger)
		}
	}

	c.JSON(http.StatusOK, response)
}

// Helper methods

func (h *BacktestHandler) buildConfig(req models.BacktestRequest) (*config.Config, error) {
	cfg := config.Default()
	cfg.Backtest = config.MergeBacktest(cfg.Backtest, config.BacktestConfig{
		InitialCash:        req.Config.InitialCash,
		WeeklyBudget:       req.Config.WeeklyBudget,
		TradeWeekday:       req.Config.TradeWeekday,
		Slippage:           req.Config.Slippage,
		MAWindow:           req.Config.MAWindow,
		MomWindow:          req.Config.MomWindow,
		CrashThreshold:     req.Config.CrashThreshold,
		RateShockThreshold: req.Config.RateShockThreshold,
	})
	if req.Config.Strategy.Name != "" {
		cfg.Strategy.Name = req.Config.Strategy.Name
	}
	if len(req.Config.Strategy.Params) > 0 {
		cfg.Strategy.Params = req.Config.Strategy.Params
	}
	if req.DataSource.RiskSymbol != "" {
		cfg.Data.RiskSymbol = req.DataSource.RiskSymbol
	}
	if req.DataSource.SafeSymbol != "" {
		cfg.Data.SafeSymbol = req.DataSource.SafeSymbol
	}
	if req.DataSource.Dir != "" {
		cfg.Data.Dir = req.DataSource.Dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *BacktestHandler) fetchData(ds models.DataSourceConfig, cfg *config.Config) (model.FrameInputs, error) {
	switch ds.Type {
	case "csv":
		return data.LoadFrameInputs(cfg.Data.Dir, cfg.Data.RiskSymbol, cfg.Data.SafeSymbol)
	case "remote":
		return h.fetchRemote(ds, cfg)
	default:
		return model.FrameInputs{}, fmt.Errorf("unsupported data source type: %s", ds.Type)
	}
}

// fetchRemote pulls the price and spread feeds directly from the upstream
// APIs. Slow-moving liquidity feeds (reserves, TGA, RRP) are left to the
// download command; the backtest degrades them to zero columns.
func (h *BacktestHandler) fetchRemote(ds models.DataSourceConfig, cfg *config.Config) (model.FrameInputs, error) {
	start, err := time.Parse("2006-01-02", ds.StartDate)
	if err != nil {
		return model.FrameInputs{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := time.Parse("2006-01-02", ds.EndDate)
	if err != nil {
		return model.FrameInputs{}, fmt.Errorf("end_date: %w", err)
	}

	dl := data.NewDownloader("")
	var in model.FrameInputs

	in.Risk, err = dl.Yahoo.FetchCloseSeries(cfg.Data.RiskSymbol, start, end)
	if err != nil {
		return model.FrameInputs{}, err
	}
	in.Safe, err = dl.Yahoo.FetchCloseSeries(cfg.Data.SafeSymbol, start, end)
	if err != nil {
		return model.FrameInputs{}, err
	}
	if cfg.Data.SafeSymbol == "SGOV" {
		if shv, err := dl.Yahoo.FetchCloseSeries("SHV", start, end); err == nil {
			in.Safe = in.Safe.CombineFirst(shv)
		}
	}
	in.Yield, err = dl.Yahoo.FetchCloseSeries("^TNX", start, end)
	if err != nil {
		return model.FrameInputs{}, err
	}
	in.HYSpread, err = dl.FRED.FetchSeries("BAMLH0A0HYM2", start, end)
	if err != nil {
		return model.FrameInputs{}, err
	}
	return in, nil
}

func (h *BacktestHandler) buildFrame(in model.FrameInputs, cfg *config.Config) (*model.Frame, error) {
	if cfg.Strategy.Name == "lights" {
		return model.BuildWeeklyFrame(in, time.Friday, cfg.ToFrameOptions())
	}
	return model.BuildDailyFrame(in, cfg.ToFrameOptions())
}

func parsePeriods(specs []models.PeriodSpec) ([]model.Period, error) {
	periods := make([]model.Period, 0, len(specs))
	for i, spec := range specs {
		start, err := time.Parse("2006-01-02", spec.Start)
		if err != nil {
			return nil, fmt.Errorf("periods[%d].start: %w", i, err)
		}
		end, err := time.Parse("2006-01-02", spec.End)
		if err != nil {
			return nil, fmt.Errorf("periods[%d].end: %w", i, err)
		}
		label := spec.Label
		if label == "" {
			label = fmt.Sprintf("%s..%s", spec.Start, spec.End)
		}
		periods = append(periods, model.Period{Label: label, Start: start, End: end})
	}
	return periods, nil
}

func summarize(pr backtest.PeriodResult) models.PeriodSummary {
	m := pr.Result.Metrics
	summary := models.PeriodSummary{
		Label:      pr.Period.Label,
		Window:     models.TimeWindow{Start: pr.Period.Start, End: pr.Period.End},
		Steps:      m.Steps,
		Invested:   m.Invested.InexactFloat64(),
		FinalValue: m.FinalValue.InexactFloat64(),
		Profit:     m.Profit.InexactFloat64(),
		ROI:        m.ROI,
	}
	if !math.IsNaN(m.MaxDrawdown) {
		summary.MaxDrawdown = m.MaxDrawdown
	}
	return summary
}

func convertLedger(ledger []backtest.LedgerRow) []models.LedgerRow {
	result := make([]models.LedgerRow, len(ledger))
	for i, row := range ledger {
		out := models.LedgerRow{
			Index:      row.Index,
			Date:       row.Date,
			Signal:     string(row.Signal),
			TotalValue: row.TotalValue.InexactFloat64(),
			RiskValue:  row.RiskValue.InexactFloat64(),
			SafeValue:  row.SafeValue.InexactFloat64(),
			Cash:       row.Cash.InexactFloat64(),
			Price:      row.Price,
		}
		if !math.IsNaN(row.RefMA) {
			out.RefMA = row.RefMA
		}
		if !math.IsNaN(row.Drawdown) {
			out.Drawdown = row.Drawdown
		}
		if !math.IsNaN(row.RateMom) {
			out.RateMom = row.RateMom
		}
		result[i] = out
	}
	return result
}
