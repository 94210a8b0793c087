package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"macro-backtest/internal/model"
)

// FREDClient fetches observation series from the St. Louis Fed's public
// fredgraph CSV endpoint. No API key is required for this endpoint.
type FREDClient struct {
	BaseURL string
	Client  *http.Client
}

// NewFREDClient creates a client. If baseURL is empty, it defaults to
// "https://fred.stlouisfed.org".
func NewFREDClient(baseURL string) *FREDClient {
	if baseURL == "" {
		baseURL = "https://fred.stlouisfed.org"
	}
	return &FREDClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchError is a typed error for a failed data fetch, shared by all the
// downloader clients so callers can map it onto HTTP responses.
type FetchError struct {
	Source     string
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// FetchSeries downloads one FRED series over [start, end] and parses it into
// a Series. Unparseable observation values (FRED publishes "." for missing
// data) are dropped.
func (c *FREDClient) FetchSeries(seriesID string, start, end time.Time) (model.Series, error) {
	if seriesID == "" {
		return model.Series{}, fmt.Errorf("series id is required")
	}

	u, err := url.Parse(c.BaseURL + "/graph/fredgraph.csv")
	if err != nil {
		return model.Series{}, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("id", seriesID)
	q.Set("cosd", start.Format("2006-01-02"))
	q.Set("coed", end.Format("2006-01-02"))
	u.RawQuery = q.Encode()

	log.Printf("[FRED] Request: GET %s (series=%s, start=%s, end=%s)",
		u.Path, seriesID, start.Format("2006-01-02"), end.Format("2006-01-02"))

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return model.Series{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	began := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("[FRED] Request failed: %v (duration: %v)", err, time.Since(began))
		return model.Series{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[FRED] Response: %d %s (duration: %v, series=%s)",
		resp.StatusCode, resp.Status, time.Since(began), seriesID)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return model.Series{}, &FetchError{
			Source:     "fred",
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("rate limit exceeded for series %s", seriesID),
			RetryAfter: resp.Header.Get("Retry-After"),
		}
	case http.StatusNotFound:
		return model.Series{}, &FetchError{
			Source:     "fred",
			StatusCode: resp.StatusCode,
			Code:       "SERIES_NOT_FOUND",
			Message:    fmt.Sprintf("series %s not found", seriesID),
		}
	default:
		return model.Series{}, &FetchError{
			Source:     "fred",
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("fredgraph returned status %d for series %s", resp.StatusCode, seriesID),
		}
	}

	series, err := parseFREDCSV(resp.Body)
	if err != nil {
		return model.Series{}, fmt.Errorf("parse series %s: %w", seriesID, err)
	}
	log.Printf("[FRED] Success: %d observations (series=%s)", series.Len(), seriesID)
	return series, nil
}

// parseFREDCSV reads the two-column fredgraph shape:
//
//	observation_date,WRESBAL
//	2015-01-07,2571.327
//	2015-01-14,.
func parseFREDCSV(r io.Reader) (model.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return model.Series{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return model.Series{}, fmt.Errorf("unexpected header with %d columns", len(header))
	}

	var points []model.Point
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Series{}, fmt.Errorf("read record: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[0]))
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			// FRED marks missing observations with ".".
			continue
		}
		points = append(points, model.Point{Date: date, Value: value})
	}
	return model.NewSeries(points), nil
}
