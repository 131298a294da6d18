package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"saturn/internal/domain"
	"saturn/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, store.BarStore) {
	t.Helper()
	bs := store.NewParquetStore(t.TempDir())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewServer(bs, log).Handler())
	t.Cleanup(srv.Close)
	return srv, bs
}

func inlineBars(product string, days int) []domain.Bar {
	bars := make([]domain.Bar, days)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = domain.Bar{
			Product:   product,
			Timestamp: base.AddDate(0, 0, i),
			Open:      p,
			High:      p + 1,
			Low:       p - 1,
			Close:     p + 0.5,
			Volume:    10,
		}
	}
	return bars
}

func postBacktest(t *testing.T, srv *httptest.Server, req BacktestRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(srv.URL+"/api/backtest", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
}

func TestProductsEmptyAndPopulated(t *testing.T) {
	srv, bs := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/products")
	if err != nil {
		t.Fatal(err)
	}
	var products ProductsResponse
	json.NewDecoder(resp.Body).Decode(&products)
	resp.Body.Close()
	if len(products.Products) != 0 {
		t.Errorf("empty store listed %v", products.Products)
	}

	if err := bs.WriteBars(context.Background(), inlineBars("BTC-USD", 3)); err != nil {
		t.Fatal(err)
	}
	resp, err = http.Get(srv.URL + "/api/products")
	if err != nil {
		t.Fatal(err)
	}
	json.NewDecoder(resp.Body).Decode(&products)
	resp.Body.Close()
	if len(products.Products) != 1 || products.Products[0] != "BTC-USD" {
		t.Errorf("products = %v, want [BTC-USD]", products.Products)
	}
}

func TestBarsEndpoint(t *testing.T) {
	srv, bs := newTestServer(t)
	if err := bs.WriteBars(context.Background(), inlineBars("ETH-USD", 5)); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/api/bars/ETH-USD?start=2024-01-02&end=2024-01-04")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out BarsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Product != "ETH-USD" {
		t.Errorf("product = %q", out.Product)
	}
	if len(out.Bars) != 3 {
		t.Errorf("got %d bars, want 3", len(out.Bars))
	}

	resp, err = http.Get(srv.URL + "/api/bars/ETH-USD?start=bogus")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", resp.StatusCode)
	}
}

func TestBacktestInlineBars(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postBacktest(t, srv, BacktestRequest{
		Products:    []string{"BTC-USD"},
		Strategies:  []string{"ema-rsi-macd"},
		Bars:        inlineBars("BTC-USD", 10),
		InitialCash: 100_000,
		WarmUp:      2,
	})
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	var res struct {
		Timestamps  []int64   `json:"timestamps"`
		EquityCurve []float64 `json:"equityCurve"`
		EarlyExit   bool      `json:"earlyExit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	// Ten bars with two for warm-up leave eight traded intervals plus the
	// curve seed.
	if len(res.Timestamps) != 8 {
		t.Errorf("timestamps = %d, want 8", len(res.Timestamps))
	}
	if len(res.EquityCurve) != 9 {
		t.Errorf("equity curve = %d points, want 9", len(res.EquityCurve))
	}
	if res.EarlyExit {
		t.Error("unexpected early exit")
	}
}

func TestBacktestFromStore(t *testing.T) {
	srv, bs := newTestServer(t)
	if err := bs.WriteBars(context.Background(), inlineBars("BTC-USD", 10)); err != nil {
		t.Fatal(err)
	}

	resp := postBacktest(t, srv, BacktestRequest{
		Products:    []string{"BTC-USD"},
		Strategies:  []string{"bb-rsi-oversold"},
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-10",
		InitialCash: 50_000,
		WarmUp:      3,
	})
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
}

func TestBacktestValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		req  BacktestRequest
		want int
	}{
		{"no products", BacktestRequest{Strategies: []string{"ema-rsi-macd"}}, http.StatusBadRequest},
		{"no strategies", BacktestRequest{Products: []string{"BTC-USD"}}, http.StatusBadRequest},
		{
			"unknown strategy",
			BacktestRequest{
				Products:    []string{"BTC-USD"},
				Strategies:  []string{"nope"},
				Bars:        inlineBars("BTC-USD", 5),
				InitialCash: 1000,
			},
			http.StatusBadRequest,
		},
		{
			"bad growth frequency",
			BacktestRequest{
				Products:     []string{"BTC-USD"},
				Strategies:   []string{"ema-rsi-macd"},
				Bars:         inlineBars("BTC-USD", 5),
				InitialCash:  1000,
				GrowthAmount: 100,
			},
			http.StatusBadRequest,
		},
		{
			"no stored data",
			BacktestRequest{
				Products:    []string{"MISSING-USD"},
				Strategies:  []string{"ema-rsi-macd"},
				InitialCash: 1000,
			},
			http.StatusNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postBacktest(t, srv, tc.req)
			if resp.StatusCode != tc.want {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tc.want, body)
			}
		})
	}
}
