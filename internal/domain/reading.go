package domain

import (
	"strconv"
	"time"
)

// Timestamp layouts shared by the log file format and the broker payloads.
const (
	DateLayout  = "2006-01-02"
	TimeLayout  = "15:04:05"
	StampLayout = "2006-01-02 15:04:05"
)

// MinPlausibleYear guards against an unset or reset RTC. Dates before this
// would corrupt log filenames, so writes are skipped instead.
const MinPlausibleYear = 2000

// MetricKind selects one of the two logged channels.
type MetricKind int

const (
	MetricCurrent MetricKind = iota
	MetricVoltage
)

func (k MetricKind) String() string {
	switch k {
	case MetricCurrent:
		return "current"
	case MetricVoltage:
		return "voltage"
	default:
		return "unknown"
	}
}

// Reading is one sampled measurement pair taken at a single tick.
// It is immutable after creation and immediately projected into text form
// by the log writer; it is never persisted as a struct.
type Reading struct {
	Current float64   `json:"current"`
	Voltage float64   `json:"voltage"`
	TakenAt time.Time `json:"taken_at"`
}

// Value returns the channel selected by kind.
func (r Reading) Value(kind MetricKind) float64 {
	if kind == MetricVoltage {
		return r.Voltage
	}
	return r.Current
}

// ClockValid reports whether the reading carries a plausible RTC date.
func (r Reading) ClockValid() bool {
	return ClockValid(r.TakenAt)
}

// ClockValid reports whether ts is usable for building a log filename.
func ClockValid(ts time.Time) bool {
	return ts.Year() >= MinPlausibleYear
}

// FormatValue renders a measurement as a plain decimal string, never
// scientific notation, matching the legacy log format.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
