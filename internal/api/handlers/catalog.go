package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"macro-backtest/internal/api/models"
	"macro-backtest/internal/data"
	"macro-backtest/internal/strategy"
)

// ListStrategies handles GET /api/v1/strategies
func ListStrategies(c *gin.Context) {
	trend := strategy.DefaultTrendParams()
	lights := strategy.DefaultLightsParams()

	strategies := []models.StrategyInfo{
		{
			Name:        "trend",
			Description: "Weekly DCA with trend allocation, crash rotation and rate-shock exit",
			Parameters: []models.ParameterInfo{
				{Name: "crash_threshold", Type: "float", Description: "Drawdown below which the safe leg rotates into risk", Default: trend.CrashThreshold},
				{Name: "rate_shock_threshold", Type: "float", Description: "Rate momentum above which the risk leg is liquidated", Default: trend.RateShockThreshold},
				{Name: "safe_rotate_frac", Type: "float", Description: "Fraction of the safe position sold on a crash rotation", Default: trend.SafeRotateFrac},
				{Name: "bull_risk_weight", Type: "float", Description: "Cash fraction bought into risk above the trend", Default: trend.BullRiskWeight},
				{Name: "bear_risk_weight", Type: "float", Description: "Cash fraction bought into risk below the trend", Default: trend.BearRiskWeight},
			},
		},
		{
			Name:        "lights",
			Description: "Weekly traffic-light policy on close vs MA with a high-yield spread panic exit",
			Parameters: []models.ParameterInfo{
				{Name: "ma_buffer", Type: "float", Description: "Red-light buffer under the moving average", Default: lights.MABuffer},
				{Name: "panic_spread", Type: "float", Description: "High-yield OAS level that forces a panic exit", Default: lights.PanicSpread},
			},
		},
	}

	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}

// ListSeries handles GET /api/v1/series
func ListSeries(c *gin.Context) {
	catalog := data.BacktestCatalog()
	series := make([]models.SeriesInfo, 0, len(catalog))
	for _, spec := range catalog {
		series = append(series, models.SeriesInfo{Name: spec.Name, Source: spec.Source, ID: spec.ID})
	}
	c.JSON(http.StatusOK, gin.H{"series": series})
}
