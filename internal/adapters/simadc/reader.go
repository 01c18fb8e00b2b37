// Package simadc is a deterministic stand-in for the analog front-end, used
// when running without hardware and in examples.
package simadc

import (
	"math"

	"github.com/volttrace/volttrace/internal/ports"
)

type Config struct {
	BaseCurrent  float64 `yaml:"base_current"`
	CurrentSwing float64 `yaml:"current_swing"`
	BaseVoltage  float64 `yaml:"base_voltage"`
	VoltageSag   float64 `yaml:"voltage_sag"`

	// ParkAfter drops the simulated current to near zero after this many
	// reads, useful for exercising parked-upload mode. Zero disables it.
	ParkAfter int `yaml:"park_after"`
}

func (c *Config) ApplyDefaults() {
	if c.BaseCurrent == 0 {
		c.BaseCurrent = 1.2
	}
	if c.CurrentSwing == 0 {
		c.CurrentSwing = 0.4
	}
	if c.BaseVoltage == 0 {
		c.BaseVoltage = 12.6
	}
}

type Reader struct {
	cfg   Config
	reads int
}

func NewReader(cfg Config) *Reader {
	cfg.ApplyDefaults()
	return &Reader{cfg: cfg}
}

func (r *Reader) Read() (float64, float64, error) {
	n := r.reads
	r.reads++

	if r.cfg.ParkAfter > 0 && n >= r.cfg.ParkAfter {
		return 0.001, r.cfg.BaseVoltage, nil
	}

	phase := float64(n) / 30.0 * math.Pi
	current := r.cfg.BaseCurrent + r.cfg.CurrentSwing*math.Sin(phase)
	voltage := r.cfg.BaseVoltage - r.cfg.VoltageSag*float64(n)
	return current, voltage, nil
}

func (r *Reader) Close() error { return nil }

var _ ports.AnalogReader = (*Reader)(nil)
