package domain

import "time"

// Frequency is a calendar period used to schedule capital injections.
type Frequency string

// Supported frequencies.
const (
	FreqDaily     Frequency = "daily"
	FreqWeekly    Frequency = "weekly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqYearly    Frequency = "yearly"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqMonthly, FreqQuarterly, FreqYearly:
		return true
	}
	return false
}

// PeriodIndex maps a Unix timestamp (seconds, UTC) to a monotonically
// increasing period identifier for the frequency. Two timestamps fall in the
// same period iff their indices are equal, so a boundary crossing is detected
// by comparing consecutive indices.
func (f Frequency) PeriodIndex(ts int64) int64 {
	days := ts / 86400
	t := time.Unix(ts, 0).UTC()

	switch f {
	case FreqDaily:
		return days
	case FreqWeekly:
		// The Unix epoch was a Thursday; shift so weeks start on Monday.
		return (days + 4) / 7
	case FreqMonthly:
		return int64(t.Year())*12 + int64(t.Month()) - 1
	case FreqQuarterly:
		return int64(t.Year())*4 + (int64(t.Month())-1)/3
	case FreqYearly:
		return int64(t.Year())
	}
	return days
}
