// Package modbusadc reads current and voltage from a Modbus-attached shunt
// meter or ADC bridge, one polled read per register per tick.
package modbusadc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/modbus"

	"github.com/volttrace/volttrace/internal/ports"
)

// Config captures the connection and calibration surface. CurrentLSBmV is
// the converter's per-bit resolution in millivolts; the shunt pair converts
// the measured drop into amps.
type Config struct {
	Address string        `yaml:"address"`
	SlaveID byte          `yaml:"slave_id"`
	Timeout time.Duration `yaml:"timeout"`

	CurrentRegister uint16 `yaml:"current_register"`
	VoltageRegister uint16 `yaml:"voltage_register"`

	CurrentLSBmV    float64 `yaml:"current_lsb_mv"`
	ShuntAmps       float64 `yaml:"shunt_amps"`
	ShuntMillivolts float64 `yaml:"shunt_millivolts"`
	VoltageScale    float64 `yaml:"voltage_scale"`
}

func (c *Config) ApplyDefaults() {
	if c.SlaveID == 0 {
		c.SlaveID = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Second
	}
	if c.CurrentLSBmV == 0 {
		c.CurrentLSBmV = 0.0078125 // 16x gain, 16-bit converter
	}
	if c.ShuntAmps == 0 {
		c.ShuntAmps = 50
	}
	if c.ShuntMillivolts == 0 {
		c.ShuntMillivolts = 75
	}
	if c.VoltageScale == 0 {
		c.VoltageScale = 0.001 // register carries millivolts
	}
}

func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("address is required")
	}
	return nil
}

type Reader struct {
	cfg     Config
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

func NewReader(cfg Config) (*Reader, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("modbusadc config: %w", err)
	}

	handler := modbus.NewTCPClientHandler(cfg.Address)
	handler.Timeout = cfg.Timeout
	handler.SlaveId = cfg.SlaveID
	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("modbusadc connect %s: %w", cfg.Address, err)
	}

	return &Reader{
		cfg:     cfg,
		handler: handler,
		client:  modbus.NewClient(handler),
	}, nil
}

func (r *Reader) Read() (float64, float64, error) {
	rawCur, err := r.readRegister(r.cfg.CurrentRegister)
	if err != nil {
		return 0, 0, fmt.Errorf("read current register: %w", err)
	}
	rawVolt, err := r.readRegister(r.cfg.VoltageRegister)
	if err != nil {
		return 0, 0, fmt.Errorf("read voltage register: %w", err)
	}

	// Differential shunt reading: raw counts → millivolts → amps.
	current := float64(rawCur) * r.cfg.CurrentLSBmV * r.cfg.ShuntAmps / r.cfg.ShuntMillivolts
	voltage := float64(uint16(rawVolt)) * r.cfg.VoltageScale
	return current, voltage, nil
}

func (r *Reader) readRegister(addr uint16) (int16, error) {
	results, err := r.client.ReadInputRegisters(addr, 1)
	if err != nil {
		return 0, err
	}
	if len(results) < 2 {
		return 0, fmt.Errorf("short response for register %d", addr)
	}
	return int16(binary.BigEndian.Uint16(results)), nil
}

func (r *Reader) Close() error {
	return r.handler.Close()
}

var _ ports.AnalogReader = (*Reader)(nil)
