package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"saturn/internal/domain"
)

// LoadMatrix reads every product's bars for [start, end] and aligns them on
// the intersection of their timestamps, dropping bars any product is missing.
// It returns a time-major matrix (bars[t][i] is product i at interval t) and
// the matching Unix-second timestamps, both sorted ascending. ErrNoData is
// returned when the intersection is empty.
func LoadMatrix(ctx context.Context, s BarStore, products []string, start, end time.Time) ([][]domain.Bar, []int64, error) {
	if len(products) == 0 {
		return nil, nil, fmt.Errorf("no products requested")
	}

	var all []domain.Bar
	for _, p := range products {
		bars, err := s.ReadBars(ctx, p, start, end)
		if err != nil {
			return nil, nil, fmt.Errorf("reading bars for %s: %w", p, err)
		}
		all = append(all, bars...)
	}
	return AlignBars(products, all)
}

// AlignBars aligns a flat bar list on the timestamp intersection across the
// given products, in the same time-major shape LoadMatrix produces. Bars for
// products outside the list are ignored.
func AlignBars(products []string, bars []domain.Bar) ([][]domain.Bar, []int64, error) {
	if len(products) == 0 {
		return nil, nil, fmt.Errorf("no products requested")
	}

	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p] = i
	}

	// Per-product bars keyed by Unix-second timestamp.
	byProduct := make([]map[int64]domain.Bar, len(products))
	for i := range byProduct {
		byProduct[i] = make(map[int64]domain.Bar)
	}
	for _, b := range bars {
		if i, ok := index[b.Product]; ok {
			byProduct[i][b.Timestamp.Unix()] = b
		}
	}

	// Intersect timestamps across products, seeded from the first.
	var common []int64
	for ts := range byProduct[0] {
		shared := true
		for _, m := range byProduct[1:] {
			if _, ok := m[ts]; !ok {
				shared = false
				break
			}
		}
		if shared {
			common = append(common, ts)
		}
	}
	if len(common) == 0 {
		return nil, nil, ErrNoData
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })

	matrix := make([][]domain.Bar, len(common))
	for t, ts := range common {
		row := make([]domain.Bar, len(products))
		for i := range products {
			row[i] = byProduct[i][ts]
		}
		matrix[t] = row
	}
	return matrix, common, nil
}
