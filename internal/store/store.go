// Package store persists and retrieves OHLCV bar data, with a Parquet
// file backend and a SQLite backend, and assembles the aligned bar matrix
// the backtest engine consumes.
package store

import (
	"context"
	"errors"
	"time"

	"saturn/internal/domain"
)

// ErrNoData is returned when a requested range yields no bars.
var ErrNoData = errors.New("no bar data in range")

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars, merging with already-stored data.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns the product's bars within [start, end], sorted by
	// timestamp ascending.
	ReadBars(ctx context.Context, product string, start, end time.Time) ([]domain.Bar, error)

	// ListProducts returns all distinct products with stored bars.
	ListProducts(ctx context.Context) ([]string, error)
}
