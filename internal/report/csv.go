// Package report exports backtest results as CSV files for offline audit.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"saturn/internal/backtest"
)

// WriteCSVDir writes the full report set into dir: trades.csv, curves.csv,
// and positions.csv. The directory is created when missing.
func WriteCSVDir(dir string, res *backtest.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	files := []struct {
		name  string
		write func(io.Writer, *backtest.Result) error
	}{
		{"trades.csv", WriteTradesCSV},
		{"curves.csv", WriteCurvesCSV},
		{"positions.csv", WritePositionsCSV},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), res, f.write); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}
	return nil
}

func writeFile(path string, res *backtest.Result, write func(io.Writer, *backtest.Result) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTradesCSV writes one row per trade, in the order they were created.
func WriteTradesCSV(w io.Writer, res *backtest.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"product", "kind", "status", "reason", "quantity",
		"price", "timestamp", "cost", "entry_price", "holding_seconds", "realized_pnl",
	}); err != nil {
		return err
	}
	for _, t := range res.Trades {
		row := []string{
			t.Product,
			string(t.Kind),
			string(t.Status),
			t.Reason,
			formatFloat(t.Quantity),
			formatFloat(t.Price),
			formatTime(t.Timestamp),
			formatFloat(t.Cost),
			formatFloat(t.EntryPrice),
			strconv.FormatInt(t.HoldingPeriod, 10),
			formatFloat(t.RealizedPnL),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCurvesCSV writes the six portfolio curves, one row per interval. The
// leading seed point carries an empty timestamp.
func WriteCurvesCSV(w io.Writer, res *backtest.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"timestamp", "equity", "cash", "notional", "cost", "realized", "unrealized",
	}); err != nil {
		return err
	}
	for i := range res.EquityCurve {
		ts := ""
		if i > 0 && i-1 < len(res.Timestamps) {
			ts = formatTime(res.Timestamps[i-1])
		}
		row := []string{
			ts,
			formatFloat(res.EquityCurve[i]),
			formatFloat(res.CashCurve[i]),
			formatFloat(res.NotionalCurve[i]),
			formatFloat(res.CostCurve[i]),
			formatFloat(res.RealizedCurve[i]),
			formatFloat(res.UnrealizedCurve[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePositionsCSV writes the final state of every position that ever
// opened.
func WritePositionsCSV(w io.Writer, res *backtest.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"product", "quantity", "avg_entry_price", "notional",
		"realized_pnl_gross", "realized_pnl_net", "unrealized_pnl",
		"total_bought", "total_sold", "trailing_stop",
	}); err != nil {
		return err
	}
	for _, pos := range res.Positions {
		if pos == nil {
			continue
		}
		row := []string{
			pos.Product,
			formatFloat(pos.Quantity),
			formatFloat(pos.AvgEntryPrice),
			formatFloat(pos.Notional),
			formatFloat(pos.RealizedPnLGross),
			formatFloat(pos.RealizedPnLNet),
			formatFloat(pos.UnrealizedPnL),
			formatFloat(pos.TotalBought),
			formatFloat(pos.TotalSold),
			formatFloat(pos.TrailingStopPrice),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
