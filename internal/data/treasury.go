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

// TreasuryClient fetches the Treasury General Account operating cash balance
// from the FiscalData API. It supplements the FRED WTREGEN series with the
// daily balances FRED only publishes weekly.
type TreasuryClient struct {
	BaseURL string
	Client  *http.Client
}

// NewTreasuryClient creates a client. If baseURL is empty, it defaults to
// "https://api.fiscaldata.treasury.gov".
func NewTreasuryClient(baseURL string) *TreasuryClient {
	if baseURL == "" {
		baseURL = "https://api.fiscaldata.treasury.gov"
	}
	return &TreasuryClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

const tgaEndpoint = "/services/api/fiscal_service/v1/accounting/dts/operating_cash_balance"

type fiscalDataResponse struct {
	Data []struct {
		RecordDate   string `json:"record_date"`
		AccountType  string `json:"account_type"`
		CloseBalance string `json:"open_today_bal"`
	} `json:"data"`
	Meta struct {
		TotalPages int `json:"total-pages"`
	} `json:"meta"`
}

// FetchTGA downloads the Treasury General Account closing balance over
// [start, end], in billions of dollars. The API pages at 10000 records.
func (c *TreasuryClient) FetchTGA(start, end time.Time) (model.Series, error) {
	var points []model.Point
	page := 1
	for {
		body, err := c.fetchPage(start, end, page)
		if err != nil {
			return model.Series{}, err
		}
		for _, rec := range body.Data {
			date, err := time.Parse("2006-01-02", rec.RecordDate)
			if err != nil {
				continue
			}
			millions, err := strconv.ParseFloat(rec.CloseBalance, 64)
			if err != nil {
				continue
			}
			points = append(points, model.Point{Date: date, Value: millions / 1000.0})
		}
		if page >= body.Meta.TotalPages || body.Meta.TotalPages == 0 {
			break
		}
		page++
	}
	series := model.NewSeries(points)
	log.Printf("[Treasury] Success: %d observations (TGA)", series.Len())
	return series, nil
}

func (c *TreasuryClient) fetchPage(start, end time.Time, page int) (*fiscalDataResponse, error) {
	u, err := url.Parse(c.BaseURL + tgaEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("fields", "record_date,account_type,open_today_bal")
	q.Set("filter", fmt.Sprintf("account_type:eq:Treasury General Account (TGA) Closing Balance,record_date:gte:%s,record_date:lte:%s",
		start.Format("2006-01-02"), end.Format("2006-01-02")))
	q.Set("page[size]", "10000")
	q.Set("page[number]", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	log.Printf("[Treasury] Request: GET %s (page=%d, start=%s, end=%s)",
		u.Path, page, start.Format("2006-01-02"), end.Format("2006-01-02"))

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	began := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("[Treasury] Request failed: %v (duration: %v)", err, time.Since(began))
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[Treasury] Response: %d %s (duration: %v, page=%d)",
		resp.StatusCode, resp.Status, time.Since(began), page)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, &FetchError{
			Source:     "treasury",
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    "rate limit exceeded for operating cash balance",
			RetryAfter: resp.Header.Get("Retry-After"),
		}
	default:
		return nil, &FetchError{
			Source:     "treasury",
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("fiscaldata returned status %d", resp.StatusCode),
		}
	}

	var body fiscalDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &body, nil
}
