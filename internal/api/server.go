package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"saturn/internal/backtest"
	"saturn/internal/domain"
	"saturn/internal/portfolio"
	"saturn/internal/risk"
	"saturn/internal/signal"
	"saturn/internal/store"
)

const dailyCandleSeconds = 86400

// Server serves the saturn HTTP API.
type Server struct {
	store store.BarStore
	log   *slog.Logger
}

// NewServer creates a Server backed by the given bar store.
func NewServer(s store.BarStore, log *slog.Logger) *Server {
	return &Server{store: s, log: log}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/backtest", s.handleBacktest)
	mux.HandleFunc("GET /api/products", s.handleProducts)
	mux.HandleFunc("GET /api/bars/{product}", s.handleBars)
	mux.HandleFunc("GET /api/health", s.handleHealth)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	cfg, bars, timestamps, err := s.buildRun(r, &req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, store.ErrNoData) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	runner, err := backtest.NewRunner(*cfg, s.log)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := runner.Run(bars, timestamps)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, res)
}

// buildRun translates the request into a runner config plus aligned bars.
func (s *Server) buildRun(r *http.Request, req *BacktestRequest) (*backtest.Config, [][]domain.Bar, []int64, error) {
	if len(req.Products) == 0 {
		return nil, nil, nil, fmt.Errorf("products required")
	}
	if len(req.Strategies) == 0 {
		return nil, nil, nil, fmt.Errorf("strategies required")
	}

	var (
		bars       [][]domain.Bar
		timestamps []int64
		err        error
	)
	if len(req.Bars) > 0 {
		bars, timestamps, err = store.AlignBars(req.Products, req.Bars)
	} else {
		var start, end time.Time
		start, end, err = parseRange(req.StartDate, req.EndDate)
		if err == nil {
			bars, timestamps, err = store.LoadMatrix(r.Context(), s.store, req.Products, start, end)
		}
	}
	if err != nil {
		return nil, nil, nil, err
	}

	sigs, err := signal.NewMatrix(req.Strategies, len(req.Products), signal.DefaultParams())
	if err != nil {
		return nil, nil, nil, err
	}

	assetParams := risk.DefaultAssetParams()
	if req.AssetParams != nil {
		assetParams = *req.AssetParams
	}
	perAsset := make([]risk.AssetParams, len(req.Products))
	for i := range perAsset {
		perAsset[i] = assetParams
	}
	portfolioParams := risk.DefaultPortfolioParams()
	if req.PortfolioParams != nil {
		portfolioParams = *req.PortfolioParams
	}

	var growth portfolio.CapitalGrowth
	if req.GrowthAmount > 0 || req.GrowthPct > 0 {
		freq := domain.Frequency(req.GrowthFrequency)
		if !freq.Valid() {
			return nil, nil, nil, fmt.Errorf("invalid growth frequency %q", req.GrowthFrequency)
		}
		growth = portfolio.CapitalGrowth{
			Amount:    req.GrowthAmount,
			Pct:       req.GrowthPct,
			Frequency: freq,
		}
	}

	warmUp := req.WarmUp
	if warmUp == 0 {
		warmUp = 50
	}
	commission := req.CommissionRate
	if commission == 0 {
		commission = portfolio.DefaultCommissionRate
	}

	cfg := &backtest.Config{
		Products:        req.Products,
		Signals:         sigs,
		AssetParams:     perAsset,
		PortfolioParams: portfolioParams,
		InitialCash:     req.InitialCash,
		CommissionRate:  commission,
		Growth:          growth,
		WarmUp:          warmUp,
		CandleSeconds:   dailyCandleSeconds,
	}
	return cfg, bars, timestamps, nil
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		s.log.Error("listing products", "error", err)
		writeError(w, http.StatusInternalServerError, "listing products")
		return
	}
	if products == nil {
		products = []string{}
	}
	writeJSON(w, ProductsResponse{Products: products})
}

func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	product := r.PathValue("product")
	start, end, err := parseRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bars, err := s.store.ReadBars(r.Context(), product, start, end)
	if err != nil {
		s.log.Error("reading bars", "product", product, "error", err)
		writeError(w, http.StatusInternalServerError, "reading bars")
		return
	}
	if bars == nil {
		bars = []domain.Bar{}
	}
	writeJSON(w, BarsResponse{Product: product, Bars: bars})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// parseRange parses optional YYYY-MM-DD bounds, defaulting to all of time.
func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Now().UTC()

	var err error
	if startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date %q", startStr)
		}
	}
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date %q", endStr)
		}
	}
	return start, end, nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
