package data

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1704153600, 1704240000, 1704326400],
      "indicators": {
        "quote": [{
          "open":   [400.0, 401.0, null],
          "high":   [405.0, 406.0, null],
          "low":    [399.0, 400.0, null],
          "close":  [404.0, null, 403.5],
          "volume": [1000, 1100, 900]
        }],
        "adjclose": [{
          "adjclose": [403.0, null, 403.5]
        }]
      }
    }],
    "error": null
  }
}`

func TestYahooFetchDaily(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/QQQ" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("interval = %s, want 1d", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartFixture)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

	quotes, err := client.FetchDaily("QQQ", start, end)
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	// The null-close bar is dropped.
	if len(quotes) != 2 {
		t.Fatalf("quotes = %d, want 2", len(quotes))
	}
	if quotes[0].Close != 404.0 || quotes[0].AdjClose != 403.0 {
		t.Errorf("bar 0 = close %v adj %v, want 404/403", quotes[0].Close, quotes[0].AdjClose)
	}
	// Missing adjclose falls back to close.
	if quotes[1].Close != 403.5 || quotes[1].AdjClose != 403.5 {
		t.Errorf("bar 1 = close %v adj %v, want 403.5/403.5", quotes[1].Close, quotes[1].AdjClose)
	}
}

func TestYahooFetchCloseSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartFixture)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL)
	series, err := client.FetchCloseSeries("QQQ", time.Now().AddDate(0, -1, 0), time.Now())
	if err != nil {
		t.Fatalf("FetchCloseSeries: %v", err)
	}
	if series.Len() != 2 {
		t.Fatalf("len = %d, want 2", series.Len())
	}
}

func TestYahooErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL)
	_, err := client.FetchDaily("NOPE", time.Now().AddDate(0, -1, 0), time.Now())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fe.Code != "SYMBOL_NOT_FOUND" || fe.Source != "yahoo" {
		t.Errorf("FetchError = %s/%s, want SYMBOL_NOT_FOUND/yahoo", fe.Code, fe.Source)
	}
}

func TestYahooAPIErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL)
	_, err := client.FetchDaily("NOPE", time.Now().AddDate(0, -1, 0), time.Now())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fe.Code != "API_ERROR" {
		t.Errorf("code = %s, want API_ERROR", fe.Code)
	}
}
