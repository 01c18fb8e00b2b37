// Package engine holds the sampling-and-append-log core: the self-paced
// scheduler, the connectivity supervisor, the live publisher, and the
// parked-upload task. Everything here runs on one cooperative loop; no
// component blocks without a bound.
package engine

import (
	"errors"
	"time"

	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

// Scheduler drives one reading per sample period. Tick is called by the host
// loop at whatever rate it sustains; the scheduler self-paces by comparing
// elapsed monotonic time against the period and skipping the tick otherwise.
// There is no catch-up: a delayed loop yields fewer samples that minute, so
// "≈60 per minute, monotonic timestamps" is the invariant, not exactly 60.
type Scheduler struct {
	clock  ports.Clock
	reader ports.AnalogReader
	logw   ports.LogAppender
	pub    ports.SamplePublisher // nil when messaging is not configured
	pol    ports.Policy
	obs    ports.Observability

	// connected gates the live publisher; the supervisor owns the answer.
	connected func() bool
	// onReading feeds accepted readings to the parked detector and the
	// archive batcher without coupling the scheduler to either.
	onReading func(domain.Reading)

	index        int
	lastAccepted time.Duration
	primed       bool
}

func NewScheduler(
	clock ports.Clock,
	reader ports.AnalogReader,
	logw ports.LogAppender,
	pub ports.SamplePublisher,
	connected func() bool,
	onReading func(domain.Reading),
	pol ports.Policy,
	obs ports.Observability,
) *Scheduler {
	if pol.WindowSize <= 0 {
		pol.WindowSize = 60
	}
	if pol.SamplePeriod <= 0 {
		pol.SamplePeriod = time.Second
	}
	if connected == nil {
		connected = func() bool { return false }
	}
	return &Scheduler{
		clock:     clock,
		reader:    reader,
		logw:      logw,
		pub:       pub,
		pol:       pol,
		obs:       obs,
		connected: connected,
		onReading: onReading,
	}
}

// Index returns the current position inside the minute window.
func (s *Scheduler) Index() int { return s.index }

// Tick runs at most one sampling step and reports whether a sample was
// accepted. The first call always accepts.
func (s *Scheduler) Tick() bool {
	now := s.clock.Monotonic()
	if s.primed && now-s.lastAccepted < s.pol.SamplePeriod {
		return false
	}
	s.primed = true
	s.lastAccepted = now

	current, voltage, err := s.reader.Read()
	if err != nil {
		s.obs.LogError("analog_read_failed", err)
		s.obs.RecordDrop("both", err)
		return true
	}

	ts := s.clock.Now()
	if !domain.ClockValid(ts) {
		// An unset RTC would corrupt filenames; skip the whole tick and
		// leave the window index where it is so no slot goes unwritten.
		s.obs.LogError("clock_invalid", domain.ErrClockInvalid,
			ports.Field{Key: "year", Value: ts.Year()})
		s.obs.RecordDrop("both", domain.ErrClockInvalid)
		return true
	}

	reading := domain.Reading{Current: current, Voltage: voltage, TakenAt: ts}

	start := s.clock.Monotonic()
	s.append(domain.MetricCurrent, reading.Current)
	s.append(domain.MetricVoltage, reading.Voltage)
	s.obs.ObserveLatency("volttrace_append_latency_seconds",
		(s.clock.Monotonic() - start).Seconds())

	if s.pub != nil && s.connected() {
		if err := s.pub.PublishReading(reading); err != nil {
			// Best-effort mirror; the day file already has the data.
			s.obs.LogError("publish_failed", err)
		}
	}

	if s.onReading != nil {
		s.onReading(reading)
	}

	s.index = (s.index + 1) % s.pol.WindowSize
	s.obs.IncCounter("volttrace_samples_total", 1)
	s.obs.SetGauge("volttrace_sample_index", float64(s.index))
	return true
}

func (s *Scheduler) append(kind domain.MetricKind, value float64) {
	err := s.logw.Append(kind, value, s.index)
	if err == nil {
		return
	}
	if errors.Is(err, domain.ErrWriteVerification) {
		// The write itself landed; this is a diagnostic, not a drop.
		s.obs.LogError("write_verification_failed", err,
			ports.Field{Key: "metric", Value: kind.String()})
		return
	}
	s.obs.LogError("log_append_failed", err,
		ports.Field{Key: "metric", Value: kind.String()})
	s.obs.RecordDrop(kind.String(), err)
}
