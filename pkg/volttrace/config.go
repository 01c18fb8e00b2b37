package volttrace

import (
	"github.com/volttrace/volttrace/internal/adapters/modbusadc"
	"github.com/volttrace/volttrace/internal/adapters/mqtt"
	"github.com/volttrace/volttrace/internal/adapters/opcuaadc"
	"github.com/volttrace/volttrace/internal/adapters/simadc"
	"github.com/volttrace/volttrace/internal/app/config"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// SampleConfig controls the period and window of the sampler.
	SampleConfig = config.SampleConfig
	// StorageConfig locates the day-file directory and prefixes.
	StorageConfig = config.StorageConfig
	// ReaderConfig selects and configures the measurement source.
	ReaderConfig = config.ReaderConfig
	// NetworkConfig tunes reachability probing.
	NetworkConfig = config.NetworkConfig
	// BrokerConfig configures the publish/subscribe session.
	BrokerConfig = mqtt.Config
	// ParkedConfig tunes parked-mode detection and backlog upload.
	ParkedConfig = config.ParkedConfig
	// ArchiveConfig configures the optional Postgres archive.
	ArchiveConfig = config.ArchiveConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// FileServerConfig configures the log download service.
	FileServerConfig = config.FileServerConfig

	// ModbusReaderConfig holds the Modbus TCP connection and register map.
	ModbusReaderConfig = modbusadc.Config
	// OPCUAReaderConfig holds the OPC UA endpoint and node IDs.
	OPCUAReaderConfig = opcuaadc.Config
	// SimReaderConfig shapes the simulated battery.
	SimReaderConfig = simadc.Config
)

// LoadConfig loads and validates YAML from disk using the internal reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
