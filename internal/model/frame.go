package model

import (
	"errors"
	"math"
	"time"
)

var ErrNoRiskSeries = errors.New("risk series has no data")

// Row is one trading step of the joined multi-source table. Ref columns are
// the previous row's values; trade decisions must only read Ref columns so
// that a step never sees same-day information.
type Row struct {
	Date time.Time

	RiskClose float64
	SafeClose float64
	Yield     float64

	MA      float64
	RateMom float64

	RefClose   float64
	RefMA      float64
	RefRateMom float64

	// Drawdown is measured against the running maximum of RefClose, so it is
	// itself lag-safe.
	Drawdown float64

	// Macro columns, forward-filled to the trading calendar. Zero when the
	// corresponding feed was not supplied.
	Reserves float64
	TGA      float64
	RRP      float64
	HYSpread float64
}

// Frame is the ordered, time-indexed join of all input feeds plus derived
// columns. It is rebuilt from scratch on every run; there is no persistence
// and no concurrent mutation.
type Frame struct {
	Rows []Row
}

// FrameInputs are the raw feeds a frame is built from. Risk is required;
// everything else degrades to a zero column when absent.
type FrameInputs struct {
	Risk  Series
	Safe  Series
	Yield Series

	Reserves Series
	TGA      Series
	RRP      Series
	HYSpread Series
}

// FrameOptions control the derived columns.
type FrameOptions struct {
	MAWindow  int // moving-average window (rows)
	MomWindow int // rate momentum lookback (rows)
}

// BuildDailyFrame joins the feeds on the risk instrument's trading calendar,
// forward-fills the slower feeds, and computes the derived columns:
// MA, RateMom, the one-step-lagged Ref columns and the Ref-based drawdown.
func BuildDailyFrame(in FrameInputs, opts FrameOptions) (*Frame, error) {
	if in.Risk.IsEmpty() {
		return nil, ErrNoRiskSeries
	}
	if opts.MAWindow <= 0 {
		opts.MAWindow = 20
	}
	if opts.MomWindow <= 0 {
		opts.MomWindow = 40
	}

	rows := make([]Row, 0, in.Risk.Len())
	aligned := Series{Points: make([]Point, 0, in.Risk.Len())}
	yields := Series{Points: make([]Point, 0, in.Risk.Len())}

	for _, p := range in.Risk.Points {
		safe, ok := in.Safe.AsOf(p.Date)
		if !ok {
			// No safe-asset history yet; the row cannot trade both legs.
			continue
		}
		row := Row{
			Date:      normalizeDay(p.Date),
			RiskClose: p.Value,
			SafeClose: safe,
		}
		if y, ok := in.Yield.AsOf(p.Date); ok {
			row.Yield = y
		}
		row.Reserves, _ = in.Reserves.AsOf(p.Date)
		row.TGA, _ = in.TGA.AsOf(p.Date)
		row.RRP, _ = in.RRP.AsOf(p.Date)
		row.HYSpread, _ = in.HYSpread.AsOf(p.Date)

		rows = append(rows, row)
		aligned.Points = append(aligned.Points, Point{Date: row.Date, Value: row.RiskClose})
		yields.Points = append(yields.Points, Point{Date: row.Date, Value: row.Yield})
	}

	ma := aligned.RollingMean(opts.MAWindow)
	rateMom := yields.PctChange(opts.MomWindow)

	closes := aligned.Values()
	refClose := Shift(closes, 1)
	refMA := Shift(ma, 1)
	refRateMom := Shift(rateMom, 1)
	rollingMax := CumMax(refClose)

	for i := range rows {
		rows[i].MA = ma[i]
		rows[i].RateMom = rateMom[i]
		rows[i].RefClose = refClose[i]
		rows[i].RefMA = refMA[i]
		rows[i].RefRateMom = refRateMom[i]
		if math.IsNaN(refClose[i]) || math.IsNaN(rollingMax[i]) || rollingMax[i] == 0 {
			rows[i].Drawdown = math.NaN()
			continue
		}
		rows[i].Drawdown = (refClose[i] - rollingMax[i]) / rollingMax[i]
	}

	return &Frame{Rows: rows}, nil
}

// BuildWeeklyFrame resamples every feed to the last observation of each week
// ending on weekEnd and joins them on the resampled risk calendar. Macro
// feeds are forward-filled, so a week only ever sees data published by its
// close. Derived MA uses weekly rows, matching a weekly decision cadence
// where the signal is read at the week's close.
func BuildWeeklyFrame(in FrameInputs, weekEnd time.Weekday, opts FrameOptions) (*Frame, error) {
	if in.Risk.IsEmpty() {
		return nil, ErrNoRiskSeries
	}
	if opts.MAWindow <= 0 {
		opts.MAWindow = 20
	}

	risk := in.Risk.ResampleWeekly(weekEnd)
	safe := in.Safe.ResampleWeekly(weekEnd)

	rows := make([]Row, 0, risk.Len())
	aligned := Series{Points: make([]Point, 0, risk.Len())}
	for _, p := range risk.Points {
		sv, ok := safe.AsOf(p.Date)
		if !ok {
			continue
		}
		row := Row{
			Date:      p.Date,
			RiskClose: p.Value,
			SafeClose: sv,
		}
		row.Yield, _ = in.Yield.AsOf(p.Date)
		row.Reserves, _ = in.Reserves.AsOf(p.Date)
		row.TGA, _ = in.TGA.AsOf(p.Date)
		row.RRP, _ = in.RRP.AsOf(p.Date)
		row.HYSpread, _ = in.HYSpread.AsOf(p.Date)

		rows = append(rows, row)
		aligned.Points = append(aligned.Points, Point{Date: row.Date, Value: row.RiskClose})
	}

	ma := aligned.RollingMean(opts.MAWindow)
	for i := range rows {
		rows[i].MA = ma[i]
		// Weekly rows decide on the current close vs the current MA; the
		// lag-safe Ref columns only exist on daily frames.
		rows[i].RefClose = math.NaN()
		rows[i].RefMA = math.NaN()
		rows[i].RateMom = math.NaN()
		rows[i].RefRateMom = math.NaN()
		rows[i].Drawdown = math.NaN()
	}

	// Drop the MA warm-up prefix: a weekly frame is only tradable once the
	// trend column exists (mirrors dropna on the joined table).
	start := 0
	for start < len(rows) && math.IsNaN(rows[start].MA) {
		start++
	}
	return &Frame{Rows: rows[start:]}, nil
}

// Slice returns the sub-frame with start <= date < end.
func (f *Frame) Slice(start, end time.Time) *Frame {
	out := &Frame{}
	for _, r := range f.Rows {
		if r.Date.Before(start) || !r.Date.Before(end) {
			continue
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

func (f *Frame) IsEmpty() bool { return len(f.Rows) == 0 }
