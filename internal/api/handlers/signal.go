package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"macro-backtest/internal/analysis"
	"macro-backtest/internal/api/models"
	"macro-backtest/internal/data"
)

// SignalHandler serves the current trend status from downloaded CSVs
type SignalHandler struct {
	DataDir string
}

// NewSignalHandler creates a new signal handler rooted at dataDir
func NewSignalHandler(dataDir string) *SignalHandler {
	if dataDir == "" {
		dataDir = "data"
	}
	return &SignalHandler{DataDir: dataDir}
}

// GetSignal handles GET /api/v1/signal
func (h *SignalHandler) GetSignal(c *gin.Context) {
	var req models.SignalRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}
	if req.Symbol == "" {
		req.Symbol = "QQQ"
	}
	if req.MAWindow == 0 {
		req.MAWindow = 20
	}
	dir := req.Dir
	if dir == "" {
		dir = h.DataDir
	}

	series, err := data.LoadSeriesCSV(filepath.Join(dir, data.SeriesFileName(req.Symbol)))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "SERIES_NOT_FOUND",
				Message: err.Error(),
			},
		})
		return
	}

	report, err := analysis.TrendStatus(series, req.MAWindow)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INSUFFICIENT_DATA",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SignalResponse{
		Symbol:      req.Symbol,
		Date:        report.Date,
		Close:       report.Close,
		MA:          report.MA,
		MAWindow:    report.MAWindow,
		Above:       report.Above,
		DistancePct: report.DistancePct,
		Streak:      report.Streak,
	})
}
