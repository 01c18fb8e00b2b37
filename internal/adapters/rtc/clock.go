// Package rtc provides the host-side Clock adapter.
package rtc

import (
	"time"

	"github.com/volttrace/volttrace/internal/ports"
)

// SystemClock reads wall time from the OS and derives its monotonic reading
// from the process start, so pacing is immune to wall-clock steps.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() time.Time { return time.Now() }

func (c *SystemClock) Monotonic() time.Duration { return time.Since(c.start) }

var _ ports.Clock = (*SystemClock)(nil)
