// Package logfile implements the date-partitioned, minute-framed day logs
// that are the engine's durable record.
//
// The on-disk format is fixed by the fleet's existing tooling and must stay
// bit-exact: one line per minute window, preceded by a blank line,
//
//	HH:MM:SS --> v0, v1, ..., v59
//
// one file per metric per calendar day named "<Prefix><YYYY-MM-DD>.txt".
package logfile

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

const (
	headerSeparator = " --> "
	valueSeparator  = ", "
	fileExtension   = ".txt"

	// DefaultAmpsPrefix and DefaultVoltsPrefix include the trailing space;
	// it is part of the historical filename pattern.
	DefaultAmpsPrefix  = "Amps "
	DefaultVoltsPrefix = "Volts "
)

type Config struct {
	AmpsPrefix  string
	VoltsPrefix string
	WindowSize  int

	// VerifyWrites enables the window-boundary size check: after appending
	// at index 0 or the last index, a zero-size file is reported as
	// ErrWriteVerification. Diagnostic only, never retried.
	VerifyWrites bool
}

func (c *Config) applyDefaults() {
	if c.AmpsPrefix == "" {
		c.AmpsPrefix = DefaultAmpsPrefix
	}
	if c.VoltsPrefix == "" {
		c.VoltsPrefix = DefaultVoltsPrefix
	}
	if c.WindowSize <= 0 {
		c.WindowSize = 60
	}
}

// Writer appends readings to the day logs. It never holds a file handle
// between calls: every append opens, writes, and closes, so a reset
// mid-minute leaves a short but well-formed line, never a corrupt one.
type Writer struct {
	medium ports.StorageMedium
	clock  ports.Clock
	cfg    Config
}

func NewWriter(medium ports.StorageMedium, clock ports.Clock, cfg Config) *Writer {
	cfg.applyDefaults()
	return &Writer{medium: medium, clock: clock, cfg: cfg}
}

// Prefix returns the filename prefix used for kind.
func (w *Writer) Prefix(kind domain.MetricKind) string {
	if kind == domain.MetricVoltage {
		return w.cfg.VoltsPrefix
	}
	return w.cfg.AmpsPrefix
}

// Filename builds the day-file name for kind at the given date.
func (w *Writer) Filename(kind domain.MetricKind, ts time.Time) string {
	return Filename(w.Prefix(kind), ts)
}

// Append writes one value at the given position inside the current minute
// window. Index 0 opens the window (blank line + HH:MM:SS header), the last
// index terminates it with a newline, everything in between gets a trailing
// ", " delimiter.
func (w *Writer) Append(kind domain.MetricKind, value float64, indexInMinute int) error {
	now := w.clock.Now()
	if !domain.ClockValid(now) {
		return fmt.Errorf("append %s: date %s: %w", kind, now.Format(domain.DateLayout), domain.ErrClockInvalid)
	}

	name := w.Filename(kind, now)
	f, err := w.openWithRetry(name)
	if err != nil {
		return err
	}

	last := w.cfg.WindowSize - 1
	var b strings.Builder
	if indexInMinute == 0 {
		b.WriteByte('\n')
		b.WriteString(now.Format(domain.TimeLayout))
		b.WriteString(headerSeparator)
	}
	b.WriteString(domain.FormatValue(value))
	if indexInMinute < last {
		b.WriteString(valueSeparator)
	} else {
		b.WriteByte('\n')
	}

	_, werr := io.WriteString(f, b.String())
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("append %s: %w", name, werr)
	}
	if cerr != nil {
		return fmt.Errorf("close %s: %w", name, cerr)
	}

	if w.cfg.VerifyWrites && (indexInMinute == 0 || indexInMinute == last) {
		if err := w.verify(name); err != nil {
			return err
		}
	}
	return nil
}

// openWithRetry opens the file in append mode; on failure it reinitializes
// the medium once and retries once before giving up with
// ErrStorageUnavailable.
func (w *Writer) openWithRetry(name string) (io.WriteCloser, error) {
	f, err := w.medium.OpenAppend(name)
	if err == nil {
		return f, nil
	}
	if rerr := w.medium.Reinit(); rerr != nil {
		return nil, fmt.Errorf("open %s: reinit failed: %v: %w", name, rerr, domain.ErrStorageUnavailable)
	}
	f, err = w.medium.OpenAppend(name)
	if err != nil {
		return nil, fmt.Errorf("open %s after reinit: %v: %w", name, err, domain.ErrStorageUnavailable)
	}
	return f, nil
}

func (w *Writer) verify(name string) error {
	size, err := w.medium.Size(name)
	if err != nil {
		return fmt.Errorf("verify %s: %v: %w", name, err, domain.ErrWriteVerification)
	}
	if size == 0 {
		return fmt.Errorf("verify %s: file is empty after append: %w", name, domain.ErrWriteVerification)
	}
	return nil
}

var _ ports.LogAppender = (*Writer)(nil)
