// Package api talks to the Al Adhan prayer times service, which `salah verify`
// uses as an independent reference for locally computed times.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/smokyabdulrahman/salah/internal/salah"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// methodIDs maps built-in methods to Al Adhan's numeric method parameter.
var methodIDs = map[string]int{
	salah.Karachi.Name:   1,
	salah.ISNA.Name:      2,
	salah.MWL.Name:       3,
	salah.UmmAlQura.Name: 4,
	salah.Egyptian.Name:  5,
	salah.Tehran.Name:    7,
}

// MethodID returns Al Adhan's identifier for m.
func MethodID(m salah.Method) (int, bool) {
	id, ok := methodIDs[m.Name]
	return id, ok
}

// School returns Al Adhan's school parameter: 0 for Standard, 1 for Hanafi.
func School(a salah.AsrConvention) int {
	if a == salah.Hanafi {
		return 1
	}
	return 0
}

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a new API client with a 10s timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

// Query identifies one day at one place under one convention.
type Query struct {
	Date      time.Time
	Latitude  float64
	Longitude float64
	Timezone  string
	Method    salah.Method
	Asr       salah.AsrConvention
}

// FetchTimings fetches the reference timings for q.
func (c *Client) FetchTimings(ctx context.Context, q Query) (*Response, error) {
	id, ok := MethodID(q.Method)
	if !ok {
		return nil, fmt.Errorf("method %s has no Al Adhan equivalent", q.Method)
	}

	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, q.Date.Format("02-01-2006"))

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', 6, 64))
	params.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', 6, 64))
	params.Set("method", strconv.Itoa(id))
	params.Set("school", strconv.Itoa(School(q.Asr)))
	if q.Timezone != "" {
		params.Set("timezonestring", q.Timezone)
	}

	return c.doRequest(ctx, endpoint, params)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}

	if apiResp.Code != 200 {
		return nil, fmt.Errorf("API error: code=%d status=%s", apiResp.Code, apiResp.Status)
	}

	return &apiResp, nil
}
