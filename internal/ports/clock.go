package ports

import "time"

// Clock wraps the battery-backed real-time clock. Now supplies wall time for
// filenames, headers, and payloads; Monotonic supplies a reading that only
// moves forward and is used for all pacing decisions, never for display.
type Clock interface {
	Now() time.Time
	Monotonic() time.Duration
}
