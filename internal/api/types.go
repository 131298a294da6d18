// Package api provides the HTTP REST API: running backtests and browsing
// stored bar data as JSON.
package api

import (
	"saturn/internal/domain"
	"saturn/internal/risk"
)

// BacktestRequest describes one backtest run. Bars may be supplied inline;
// when omitted, bars are loaded from the store for [StartDate, EndDate].
type BacktestRequest struct {
	Products   []string `json:"products"`
	Strategies []string `json:"strategies"`

	StartDate string       `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate   string       `json:"endDate,omitempty"`
	Bars      []domain.Bar `json:"bars,omitempty"`

	InitialCash    float64 `json:"initialCash"`
	CommissionRate float64 `json:"commissionRate"`
	WarmUp         int     `json:"warmUp"`

	GrowthAmount    float64 `json:"growthAmount,omitempty"`
	GrowthPct       float64 `json:"growthPct,omitempty"`
	GrowthFrequency string  `json:"growthFrequency,omitempty"`

	// Optional overrides; defaults apply when omitted.
	AssetParams     *risk.AssetParams     `json:"assetParams,omitempty"`
	PortfolioParams *risk.PortfolioParams `json:"portfolioParams,omitempty"`
}

// ProductsResponse lists products with stored bar data.
type ProductsResponse struct {
	Products []string `json:"products"`
}

// BarsResponse returns one product's bars for a range.
type BarsResponse struct {
	Product string       `json:"product"`
	Bars    []domain.Bar `json:"bars"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status string `json:"status"`
}
