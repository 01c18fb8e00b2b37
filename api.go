package volttrace

import (
	base "github.com/volttrace/volttrace/pkg/volttrace"
)

// Re-exported errors for convenience.
var (
	ErrStorageUnavailable = base.ErrStorageUnavailable
	ErrClockInvalid       = base.ErrClockInvalid
	ErrWriteVerification  = base.ErrWriteVerification
	ErrNetworkUnavailable = base.ErrNetworkUnavailable
	ErrBrokerUnavailable  = base.ErrBrokerUnavailable
)

// Type aliases so consumers can import github.com/volttrace/volttrace directly.
type (
	Config             = base.Config
	SampleConfig       = base.SampleConfig
	StorageConfig      = base.StorageConfig
	ReaderConfig       = base.ReaderConfig
	NetworkConfig      = base.NetworkConfig
	BrokerConfig       = base.BrokerConfig
	ParkedConfig       = base.ParkedConfig
	ArchiveConfig      = base.ArchiveConfig
	MetricsConfig      = base.MetricsConfig
	FileServerConfig   = base.FileServerConfig
	ModbusReaderConfig = base.ModbusReaderConfig
	OPCUAReaderConfig  = base.OPCUAReaderConfig
	SimReaderConfig    = base.SimReaderConfig
	Monitor            = base.Monitor
	Option             = base.Option
	Reading            = base.Reading
	MetricKind         = base.MetricKind
	Policy             = base.Policy
	Clock              = base.Clock
	AnalogReader       = base.AnalogReader
	StorageMedium      = base.StorageMedium
	NetworkLink        = base.NetworkLink
	BrokerSession      = base.BrokerSession
	ArchiveSink        = base.ArchiveSink
	Observability      = base.Observability
	Field              = base.Field
)

const (
	MetricCurrent = base.MetricCurrent
	MetricVoltage = base.MetricVoltage
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Monitor constructors.
func Open(path string, opts ...Option) (*Monitor, error) {
	return base.Open(path, opts...)
}

func FromConfig(cfg *Config, opts ...Option) (*Monitor, error) {
	return base.FromConfig(cfg, opts...)
}

// Dependency overrides.
func WithClock(c Clock) Option {
	return base.WithClock(c)
}

func WithAnalogReader(r AnalogReader) Option {
	return base.WithAnalogReader(r)
}

func WithStorageMedium(m StorageMedium) Option {
	return base.WithStorageMedium(m)
}

func WithNetworkLink(l NetworkLink) Option {
	return base.WithNetworkLink(l)
}

func WithBrokerSession(s BrokerSession) Option {
	return base.WithBrokerSession(s)
}

func WithArchiveSink(a ArchiveSink) Option {
	return base.WithArchiveSink(a)
}

func WithObservability(obs Observability) Option {
	return base.WithObservability(obs)
}
