package gather

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"saturn/internal/domain"
	"saturn/internal/store"
	"saturn/internal/util"
)

// ---------------------------------------------------------------------------
// Compile-time interface check
// ---------------------------------------------------------------------------

var _ Gatherer = (*DailyBarGatherer)(nil)

// DefaultCoinbaseURL is the public Coinbase Exchange market-data endpoint.
const DefaultCoinbaseURL = "https://api.exchange.coinbase.com"

// maxCandlesPerRequest is the Coinbase per-request candle cap.
const maxCandlesPerRequest = 300

// ---------------------------------------------------------------------------
// CoinbaseClient — public market-data client for the Coinbase Exchange API.
// ---------------------------------------------------------------------------

// CoinbaseClient fetches historical candles from the public Coinbase
// Exchange API. All requests flow through a shared rate limiter.
type CoinbaseClient struct {
	client  *resty.Client
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewCoinbaseClient creates a CoinbaseClient against baseURL, limited to
// ratePerMinute requests per minute.
func NewCoinbaseClient(baseURL string, ratePerMinute int) *CoinbaseClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "saturn-gather")

	return &CoinbaseClient{
		client:  client,
		limiter: util.NewRateLimiter(ratePerMinute),
		log:     slog.Default().With("client", "coinbase"),
	}
}

// DailyBars fetches the product's daily candles for [start, end], paging in
// windows of at most 300 candles. Bars come back sorted by timestamp
// ascending.
func (c *CoinbaseClient) DailyBars(ctx context.Context, product string, start, end time.Time) ([]domain.Bar, error) {
	var bars []domain.Bar

	window := time.Duration(maxCandlesPerRequest) * 24 * time.Hour
	for cursor := start; !cursor.After(end); cursor = cursor.Add(window) {
		windowEnd := cursor.Add(window - 24*time.Hour)
		if windowEnd.After(end) {
			windowEnd = end
		}

		chunk, err := c.fetchWindow(ctx, product, cursor, windowEnd)
		if err != nil {
			return nil, fmt.Errorf("fetching %s candles %s..%s: %w",
				product, cursor.Format("2006-01-02"), windowEnd.Format("2006-01-02"), err)
		}
		bars = append(bars, chunk...)
	}
	return bars, nil
}

// fetchWindow retrieves one <=300-candle window. The API returns candles as
// [time, low, high, open, close, volume] rows, newest first.
func (c *CoinbaseClient) fetchWindow(ctx context.Context, product string, start, end time.Time) ([]domain.Bar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var rows [][]float64
	err := util.Retry(ctx, 3, time.Second, func() error {
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"granularity": "86400",
				"start":       start.UTC().Format(time.RFC3339),
				"end":         end.UTC().Format(time.RFC3339),
			}).
			SetResult(&rows).
			Get(fmt.Sprintf("/products/%s/candles", product))
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("coinbase returned %s: %s", resp.Status(), resp.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bars := make([]domain.Bar, 0, len(rows))
	// Reverse into ascending timestamp order.
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if len(r) < 6 {
			continue
		}
		bars = append(bars, domain.Bar{
			Product:   product,
			Timestamp: time.Unix(int64(r[0]), 0).UTC(),
			Low:       r[1],
			High:      r[2],
			Open:      r[3],
			Close:     r[4],
			Volume:    r[5],
		})
	}
	return bars, nil
}

// ---------------------------------------------------------------------------
// DailyBarGatherer — orchestrates daily candle collection.
// ---------------------------------------------------------------------------

// DailyBarGatherer fetches daily candles for a configured product list and
// persists them through a BarStore. Products are processed by a small worker
// pool; the shared client rate limiter keeps the venue happy regardless of
// worker count.
type DailyBarGatherer struct {
	client     *CoinbaseClient
	store      store.BarStore
	products   []string
	startDate  string
	maxWorkers int
	log        *slog.Logger
}

// NewDailyBarGatherer creates a DailyBarGatherer for the given products,
// fetching from startDate (YYYY-MM-DD) to the last finished UTC day.
func NewDailyBarGatherer(client *CoinbaseClient, s store.BarStore, products []string, startDate string, maxWorkers int) *DailyBarGatherer {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &DailyBarGatherer{
		client:     client,
		store:      s,
		products:   products,
		startDate:  startDate,
		maxWorkers: maxWorkers,
		log:        slog.Default().With("gatherer", "coinbase-daily"),
	}
}

// Name returns the gatherer identifier.
func (g *DailyBarGatherer) Name() string { return "coinbase-daily" }

// Run fetches daily candles for every configured product and writes them to
// the store. Failures are product-local: the run continues past them and
// reports a single error at the end when any product failed.
func (g *DailyBarGatherer) Run(ctx context.Context) error {
	start, err := time.Parse("2006-01-02", g.startDate)
	if err != nil {
		return fmt.Errorf("parsing start date %q: %w", g.startDate, err)
	}
	// The current UTC day is still forming; stop at yesterday.
	end := time.Now().UTC().Truncate(24 * time.Hour).Add(-24 * time.Hour)

	g.log.Info("starting coinbase-daily",
		"products", len(g.products),
		"start", g.startDate,
		"end", end.Format("2006-01-02"),
		"workers", g.maxWorkers,
	)

	jobs := make(chan string)
	var wg sync.WaitGroup
	var barsWritten, failures atomic.Int64

	for w := 0; w < g.maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for product := range jobs {
				bars, err := g.client.DailyBars(ctx, product, start, end)
				if err != nil {
					g.log.Error("fetch failed", "product", product, "error", err)
					failures.Add(1)
					continue
				}
				if err := g.store.WriteBars(ctx, bars); err != nil {
					g.log.Error("write failed", "product", product, "error", err)
					failures.Add(1)
					continue
				}
				barsWritten.Add(int64(len(bars)))
				g.log.Info("product done", "product", product, "bars", len(bars))
			}
		}()
	}

	for _, product := range g.products {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- product:
		}
	}
	close(jobs)
	wg.Wait()

	g.log.Info("coinbase-daily finished",
		"bars", barsWritten.Load(),
		"failures", failures.Load(),
	)
	if n := failures.Load(); n > 0 {
		return fmt.Errorf("%d of %d products failed", n, len(g.products))
	}
	return nil
}
