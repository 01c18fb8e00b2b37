// Package volttrace is the embeddable API for the battery monitor. A Monitor
// wraps the sampling runtime: a self-paced reading scheduler, minute-framed
// day files on a storage medium, a best-effort broker mirror, and the
// parked-mode backlog uploader.
package volttrace

import (
	"context"
	"fmt"

	"github.com/volttrace/volttrace/internal/app/config"
	"github.com/volttrace/volttrace/internal/app/engine"
	"github.com/volttrace/volttrace/internal/ports"
)

// Option customizes the dependencies used by a Monitor.
type Option func(*engine.Overrides)

// WithClock injects a custom time source, typically a battery-backed RTC
// driver or a fake in tests.
func WithClock(c ports.Clock) Option {
	return func(o *engine.Overrides) {
		o.Clock = c
	}
}

// WithAnalogReader injects a custom measurement source in place of the
// configured one (Modbus, OPC UA, or the simulator).
func WithAnalogReader(r ports.AnalogReader) Option {
	return func(o *engine.Overrides) {
		o.Reader = r
	}
}

// WithStorageMedium replaces the directory-backed medium, e.g. with an
// in-memory one for tests.
func WithStorageMedium(m ports.StorageMedium) Option {
	return func(o *engine.Overrides) {
		o.Medium = m
	}
}

// WithNetworkLink injects a custom reachability probe.
func WithNetworkLink(l ports.NetworkLink) Option {
	return func(o *engine.Overrides) {
		o.Link = l
	}
}

// WithBrokerSession injects a custom broker client.
func WithBrokerSession(s ports.BrokerSession) Option {
	return func(o *engine.Overrides) {
		o.Session = s
	}
}

// WithArchiveSink replaces the Postgres archive with any batch writer.
func WithArchiveSink(a ports.ArchiveSink) Option {
	return func(o *engine.Overrides) {
		o.Archive = a
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs ports.Observability) Option {
	return func(o *engine.Overrides) {
		o.Observability = obs
	}
}

// Monitor is one assembled battery monitor instance.
type Monitor struct {
	rt  *engine.Runtime
	cfg *config.Config
}

// Open loads the YAML configuration at path and assembles a Monitor from it.
func Open(path string, opts ...Option) (*Monitor, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return FromConfig(cfg, opts...)
}

// FromConfig assembles a Monitor from an already-built configuration. The
// config must have passed Validate; Load does this for callers of Open.
func FromConfig(cfg *config.Config, opts ...Option) (*Monitor, error) {
	var ov engine.Overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&ov)
		}
	}

	rt, err := engine.New(cfg, ov)
	if err != nil {
		return nil, err
	}
	return &Monitor{rt: rt, cfg: cfg}, nil
}

// Run blocks in the monitoring loop until ctx is cancelled, then shuts down
// gracefully.
func (m *Monitor) Run(ctx context.Context) error {
	return m.rt.Run(ctx)
}

// Step advances the monitor by one cooperative tick. Embedders that own
// their main loop call this instead of Run.
func (m *Monitor) Step() {
	m.rt.Step()
}

// Shutdown releases every owned resource. Only needed by callers driving the
// loop with Step; Run shuts down itself.
func (m *Monitor) Shutdown(ctx context.Context) error {
	return m.rt.Shutdown(ctx)
}
