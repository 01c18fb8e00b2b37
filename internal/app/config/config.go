package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/volttrace/volttrace/internal/adapters/logfile"
	"github.com/volttrace/volttrace/internal/adapters/modbusadc"
	"github.com/volttrace/volttrace/internal/adapters/mqtt"
	"github.com/volttrace/volttrace/internal/adapters/opcuaadc"
	"github.com/volttrace/volttrace/internal/adapters/simadc"
	"github.com/volttrace/volttrace/internal/ports"
)

// Reader kinds accepted by reader.kind.
const (
	ReaderSim    = "sim"
	ReaderModbus = "modbus"
	ReaderOPCUA  = "opcua"
)

type Config struct {
	Sample     SampleConfig     `yaml:"sample"`
	Storage    StorageConfig    `yaml:"storage"`
	Reader     ReaderConfig     `yaml:"reader"`
	Network    NetworkConfig    `yaml:"network"`
	Broker     mqtt.Config      `yaml:"broker"`
	Parked     ParkedConfig     `yaml:"parked"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	FileServer FileServerConfig `yaml:"file_server"`
	LoopIdle   time.Duration    `yaml:"loop_idle"`
}

type SampleConfig struct {
	Period     time.Duration `yaml:"period"`
	WindowSize int           `yaml:"window_size"`
}

type StorageConfig struct {
	Dir          string `yaml:"dir"`
	AmpsPrefix   string `yaml:"amps_prefix"`
	VoltsPrefix  string `yaml:"volts_prefix"`
	VerifyWrites bool   `yaml:"verify_writes"`
}

type ReaderConfig struct {
	Kind   string           `yaml:"kind"`
	Sim    simadc.Config    `yaml:"sim"`
	Modbus modbusadc.Config `yaml:"modbus"`
	OPCUA  opcuaadc.Config  `yaml:"opcua"`
}

type NetworkConfig struct {
	RetryInterval time.Duration `yaml:"retry_interval"`
	JoinTimeout   time.Duration `yaml:"join_timeout"`

	BrokerConnectAttempts int           `yaml:"broker_connect_attempts"`
	BrokerConnectBackoff  time.Duration `yaml:"broker_connect_backoff"`
	PublishAttempts       int           `yaml:"publish_attempts"`
	PublishRetryDelay     time.Duration `yaml:"publish_retry_delay"`
}

type ParkedConfig struct {
	Enabled        bool          `yaml:"enabled"`
	EnterThreshold float64       `yaml:"enter_threshold"`
	ExitThreshold  float64       `yaml:"exit_threshold"`
	ConfirmTicks   int           `yaml:"confirm_ticks"`
	ScanInterval   time.Duration `yaml:"scan_interval"`
	RegistryCap    int           `yaml:"registry_cap"`
}

type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type FileServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Sample.Period == 0 {
		c.Sample.Period = time.Second
	}
	if c.Sample.WindowSize == 0 {
		c.Sample.WindowSize = 60
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "./data/logs"
	}
	if c.Storage.AmpsPrefix == "" {
		c.Storage.AmpsPrefix = logfile.DefaultAmpsPrefix
	}
	if c.Storage.VoltsPrefix == "" {
		c.Storage.VoltsPrefix = logfile.DefaultVoltsPrefix
	}
	if c.Reader.Kind == "" {
		c.Reader.Kind = ReaderSim
	}
	if c.Network.RetryInterval == 0 {
		c.Network.RetryInterval = 30 * time.Second
	}
	if c.Network.JoinTimeout == 0 {
		c.Network.JoinTimeout = 10 * time.Second
	}
	if c.Network.BrokerConnectAttempts == 0 {
		c.Network.BrokerConnectAttempts = 3
	}
	if c.Network.BrokerConnectBackoff == 0 {
		c.Network.BrokerConnectBackoff = 2 * time.Second
	}
	if c.Network.PublishAttempts == 0 {
		c.Network.PublishAttempts = 3
	}
	if c.Network.PublishRetryDelay == 0 {
		c.Network.PublishRetryDelay = 100 * time.Millisecond
	}
	if c.Parked.EnterThreshold == 0 {
		c.Parked.EnterThreshold = 0.05
	}
	if c.Parked.ExitThreshold == 0 {
		c.Parked.ExitThreshold = c.Parked.EnterThreshold
	}
	if c.Parked.ConfirmTicks == 0 {
		c.Parked.ConfirmTicks = 120
	}
	if c.Parked.ScanInterval == 0 {
		c.Parked.ScanInterval = 5 * time.Minute
	}
	if c.Parked.RegistryCap == 0 {
		c.Parked.RegistryCap = 64
	}
	if c.Archive.Table == "" {
		c.Archive.Table = "readings"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.FileServer.Addr == "" {
		c.FileServer.Addr = ":8080"
	}
	if c.LoopIdle == 0 {
		c.LoopIdle = 5 * time.Millisecond
	}

	c.Broker.ApplyDefaults()
	c.Reader.Sim.ApplyDefaults()
}

func (c *Config) Validate() error {
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required")
	}
	switch c.Reader.Kind {
	case ReaderSim:
	case ReaderModbus:
		c.Reader.Modbus.ApplyDefaults()
		if err := c.Reader.Modbus.Validate(); err != nil {
			return fmt.Errorf("reader.modbus: %w", err)
		}
	case ReaderOPCUA:
		c.Reader.OPCUA.ApplyDefaults()
		if err := c.Reader.OPCUA.Validate(); err != nil {
			return fmt.Errorf("reader.opcua: %w", err)
		}
	default:
		return fmt.Errorf("reader.kind %q is not one of sim, modbus, opcua", c.Reader.Kind)
	}
	if err := c.Broker.Validate(); err != nil {
		return fmt.Errorf("broker: %w", err)
	}
	if c.Parked.Enabled && !c.Broker.Enabled {
		return fmt.Errorf("parked.enabled requires broker.enabled")
	}
	if c.Archive.Enabled && c.Archive.ConnString == "" {
		return fmt.Errorf("archive.conn_string is required when archive is enabled")
	}
	return nil
}

// Policy projects the configuration onto the engine's bounded-wait knobs.
func (c *Config) Policy() ports.Policy {
	return ports.Policy{
		SamplePeriod:          c.Sample.Period,
		WindowSize:            c.Sample.WindowSize,
		NetworkRetryInterval:  c.Network.RetryInterval,
		JoinTimeout:           c.Network.JoinTimeout,
		BrokerConnectAttempts: c.Network.BrokerConnectAttempts,
		BrokerConnectBackoff:  c.Network.BrokerConnectBackoff,
		PublishAttempts:       c.Network.PublishAttempts,
		PublishRetryDelay:     c.Network.PublishRetryDelay,
		ParkedEnterThreshold:  c.Parked.EnterThreshold,
		ParkedExitThreshold:   c.Parked.ExitThreshold,
		ParkedConfirmTicks:    c.Parked.ConfirmTicks,
		BacklogScanInterval:   c.Parked.ScanInterval,
		UploadRegistryCap:     c.Parked.RegistryCap,
		ArchiveFlushEvery:     c.Sample.WindowSize,
		ArchiveBacklogCap:     c.Sample.WindowSize * 10,
		LoopIdle:              c.LoopIdle,
	}
}
