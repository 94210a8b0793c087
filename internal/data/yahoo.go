package data

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"macro-backtest/internal/model"
)

// YahooClient fetches daily OHLC history from Yahoo Finance's v8 chart API.
type YahooClient struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooClient creates a client. If baseURL is empty, it defaults to
// "https://query1.finance.yahoo.com".
func NewYahooClient(baseURL string) *YahooClient {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &YahooClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Quote is one daily bar. AdjClose falls back to Close when Yahoo does not
// publish an adjusted series for the symbol.
type Quote struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily downloads daily bars for symbol over [start, end]. Bars where
// Yahoo reports a null close are dropped.
func (c *YahooClient) FetchDaily(symbol string, start, end time.Time) ([]Quote, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	u, err := url.Parse(c.BaseURL + "/v8/finance/chart/" + url.PathEscape(symbol))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "div,splits")
	u.RawQuery = q.Encode()

	log.Printf("[Yahoo] Request: GET %s (symbol=%s, start=%s, end=%s)",
		u.Path, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; macro-backtest/1.0)")

	began := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("[Yahoo] Request failed: %v (duration: %v)", err, time.Since(began))
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[Yahoo] Response: %d %s (duration: %v, symbol=%s)",
		resp.StatusCode, resp.Status, time.Since(began), symbol)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, &FetchError{
			Source:     "yahoo",
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("rate limit exceeded for symbol %s", symbol),
			RetryAfter: resp.Header.Get("Retry-After"),
		}
	case http.StatusNotFound:
		return nil, &FetchError{
			Source:     "yahoo",
			StatusCode: resp.StatusCode,
			Code:       "SYMBOL_NOT_FOUND",
			Message:    fmt.Sprintf("symbol %s not found", symbol),
		}
	default:
		return nil, &FetchError{
			Source:     "yahoo",
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("chart API returned status %d for symbol %s", resp.StatusCode, symbol),
		}
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response for %s: %w", symbol, err)
	}
	if body.Chart.Error != nil {
		return nil, &FetchError{
			Source:     "yahoo",
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("chart API error for %s: %s", symbol, body.Chart.Error.Description),
		}
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", symbol)
	}

	result := body.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote block for %s", symbol)
	}
	bars := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	quotes := make([]Quote, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(bars.Close) || bars.Close[i] == nil {
			continue
		}
		q := Quote{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: *bars.Close[i],
		}
		if i < len(bars.Open) && bars.Open[i] != nil {
			q.Open = *bars.Open[i]
		}
		if i < len(bars.High) && bars.High[i] != nil {
			q.High = *bars.High[i]
		}
		if i < len(bars.Low) && bars.Low[i] != nil {
			q.Low = *bars.Low[i]
		}
		if i < len(bars.Volume) && bars.Volume[i] != nil {
			q.Volume = *bars.Volume[i]
		}
		q.AdjClose = q.Close
		if i < len(adj) && adj[i] != nil {
			q.AdjClose = *adj[i]
		}
		quotes = append(quotes, q)
	}

	log.Printf("[Yahoo] Success: %d bars (symbol=%s)", len(quotes), symbol)
	return quotes, nil
}

// FetchCloseSeries downloads daily bars and keeps only the close column.
func (c *YahooClient) FetchCloseSeries(symbol string, start, end time.Time) (model.Series, error) {
	quotes, err := c.FetchDaily(symbol, start, end)
	if err != nil {
		return model.Series{}, err
	}
	points := make([]model.Point, 0, len(quotes))
	for _, q := range quotes {
		points = append(points, model.Point{Date: q.Date, Value: q.Close})
	}
	return model.NewSeries(points), nil
}
