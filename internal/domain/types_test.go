package domain

import (
	"testing"
	"time"
)

func TestTradeStatusTerminal(t *testing.T) {
	cases := []struct {
		status TradeStatus
		want   bool
	}{
		{TradePending, false},
		{TradeExecuted, true},
		{TradeFailed, true},
		{TradeRejected, true},
	}
	for _, c := range cases {
		if got := c.status.Terminal(); got != c.want {
			t.Errorf("Terminal(%s) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestFrequencyValid(t *testing.T) {
	for _, f := range []Frequency{FreqDaily, FreqWeekly, FreqMonthly, FreqQuarterly, FreqYearly} {
		if !f.Valid() {
			t.Errorf("Valid(%s) = false, want true", f)
		}
	}
	if Frequency("hourly").Valid() {
		t.Error("Valid(hourly) = true, want false")
	}
}

func TestPeriodIndexDaily(t *testing.T) {
	d0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix()
	d0late := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC).Unix()
	d1 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC).Unix()

	if FreqDaily.PeriodIndex(d0) != FreqDaily.PeriodIndex(d0late) {
		t.Error("same day maps to different daily periods")
	}
	if FreqDaily.PeriodIndex(d1) != FreqDaily.PeriodIndex(d0)+1 {
		t.Error("next day is not the next daily period")
	}
}

func TestPeriodIndexWeekly(t *testing.T) {
	// 2024-03-04 is a Monday; the prior Sunday must fall in the previous week.
	sun := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC).Unix()
	mon := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC).Unix()
	nextSun := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC).Unix()

	if FreqWeekly.PeriodIndex(sun) == FreqWeekly.PeriodIndex(mon) {
		t.Error("Sunday and the following Monday map to the same week")
	}
	if FreqWeekly.PeriodIndex(mon) != FreqWeekly.PeriodIndex(nextSun) {
		t.Error("Monday and the following Sunday map to different weeks")
	}
}

func TestPeriodIndexMonthlyQuarterlyYearly(t *testing.T) {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).Unix()
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC).Unix()
	apr := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).Unix()
	nextYear := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	if FreqMonthly.PeriodIndex(feb) != FreqMonthly.PeriodIndex(jan)+1 {
		t.Error("February is not the month after January")
	}
	if FreqQuarterly.PeriodIndex(jan) != FreqQuarterly.PeriodIndex(feb) {
		t.Error("January and February are in different quarters")
	}
	if FreqQuarterly.PeriodIndex(apr) != FreqQuarterly.PeriodIndex(jan)+1 {
		t.Error("April is not the quarter after Q1")
	}
	if FreqYearly.PeriodIndex(nextYear) != FreqYearly.PeriodIndex(jan)+1 {
		t.Error("2025 is not the year after 2024")
	}
}
