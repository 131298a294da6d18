// Package saturn provides a Go SDK for the saturn-server API. The package is
// self-contained: its types mirror the wire format without importing the
// server internals.
package saturn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client provides access to the saturn-server HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new saturn API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

// Bar is one OHLCV sample.
type Bar struct {
	Product   string    `json:"product"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// BacktestRequest describes one backtest run. Bars may be supplied inline;
// otherwise the server loads [StartDate, EndDate] from its store.
type BacktestRequest struct {
	Products   []string `json:"products"`
	Strategies []string `json:"strategies"`

	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Bars      []Bar  `json:"bars,omitempty"`

	InitialCash    float64 `json:"initialCash"`
	CommissionRate float64 `json:"commissionRate,omitempty"`
	WarmUp         int     `json:"warmUp,omitempty"`

	GrowthAmount    float64 `json:"growthAmount,omitempty"`
	GrowthPct       float64 `json:"growthPct,omitempty"`
	GrowthFrequency string  `json:"growthFrequency,omitempty"`
}

// Trade is one order record from a backtest run.
type Trade struct {
	Product     string  `json:"product"`
	Quantity    float64 `json:"quantity"`
	Kind        string  `json:"kind"`
	Status      string  `json:"status"`
	Reason      string  `json:"reason,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Timestamp   int64   `json:"timestamp,omitempty"`
	Cost        float64 `json:"cost,omitempty"`
	RealizedPnL float64 `json:"realizedPnl,omitempty"`
}

// Metrics are the summary performance numbers of a run.
type Metrics struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	SharpeRatio      float64 `json:"sharpeRatio"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
	TotalTrades      int     `json:"totalTrades"`
	WinRate          float64 `json:"winRate"`
	ProfitFactor     float64 `json:"profitFactor"`
}

// BacktestResult is the server's run outcome.
type BacktestResult struct {
	Timestamps []int64 `json:"timestamps"`

	EquityCurve     []float64 `json:"equityCurve"`
	CashCurve       []float64 `json:"cashCurve"`
	NotionalCurve   []float64 `json:"notionalCurve"`
	CostCurve       []float64 `json:"costCurve"`
	RealizedCurve   []float64 `json:"realizedCurve"`
	UnrealizedCurve []float64 `json:"unrealizedCurve"`

	Trades []Trade `json:"trades"`

	EarlyExit     bool  `json:"earlyExit"`
	ExitIndex     int   `json:"exitIndex"`
	ExitTimestamp int64 `json:"exitTimestamp,omitempty"`

	Metrics Metrics `json:"metrics"`
}

// ---------------------------------------------------------------------------
// API methods
// ---------------------------------------------------------------------------

// Health checks service liveness.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/api/health", nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", out.Status)
	}
	return nil
}

// Products lists products with stored bar data.
func (c *Client) Products(ctx context.Context) ([]string, error) {
	var out struct {
		Products []string `json:"products"`
	}
	if err := c.get(ctx, "/api/products", nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// Bars retrieves a product's daily bars within [start, end].
func (c *Client) Bars(ctx context.Context, product string, start, end time.Time) ([]Bar, error) {
	q := url.Values{}
	if !start.IsZero() {
		q.Set("start", start.UTC().Format("2006-01-02"))
	}
	if !end.IsZero() {
		q.Set("end", end.UTC().Format("2006-01-02"))
	}

	var out struct {
		Bars []Bar `json:"bars"`
	}
	if err := c.get(ctx, "/api/bars/"+url.PathEscape(product), q, &out); err != nil {
		return nil, err
	}
	return out.Bars, nil
}

// RunBacktest executes a backtest on the server and returns its result.
func (c *Client) RunBacktest(ctx context.Context, req BacktestRequest) (*BacktestResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/backtest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var res BacktestResult
	if err := c.do(httpReq, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (%d)", req.Method, req.URL.Path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
