package backtest

import (
	"fmt"
	"log"

	"github.com/schollz/progressbar/v3"

	"macro-backtest/internal/model"
	"macro-backtest/internal/strategy"
)

// RunPeriods replays the strategy over each window of the frame. Every
// period starts from a fresh portfolio; windows with no data or no trades
// are skipped with a log line rather than failing the batch.
func (e *Engine) RunPeriods(frame *model.Frame, strat strategy.Strategy, params Params, periods []model.Period, showProgress bool) ([]PeriodResult, error) {
	var bar *progressbar.ProgressBar
	if showProgress {
		bar = newBatchBar(len(periods))
	}

	out := make([]PeriodResult, 0, len(periods))
	for _, period := range periods {
		if bar != nil {
			bar.Add(1)
		}

		sub := frame.Slice(period.Start, period.End)
		if sub.IsEmpty() {
			log.Printf("[Backtest] %s: no data, skipping", period.Label)
			continue
		}

		res, err := e.Run(sub, strat, params)
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", period.Label, err)
		}
		if len(res.Ledger) == 0 {
			log.Printf("[Backtest] %s: no trades, skipping", period.Label)
			continue
		}
		out = append(out, PeriodResult{Period: period, Result: res})
	}
	if bar != nil {
		bar.Finish()
	}
	return out, nil
}

func newBatchBar(periods int) *progressbar.ProgressBar {
	return progressbar.NewOptions(periods,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting periods..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
