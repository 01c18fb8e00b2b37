package volttrace

import (
	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

// Reading is one sampled current/voltage pair. It is exported so custom
// readers, sinks, and observability backends can reference it.
type Reading = domain.Reading

// MetricKind selects the current or voltage channel of a Reading.
type MetricKind = domain.MetricKind

const (
	MetricCurrent = domain.MetricCurrent
	MetricVoltage = domain.MetricVoltage
)

// Clock is the time source: wall time for stamping, monotonic for pacing.
type Clock = ports.Clock

// AnalogReader produces one current/voltage measurement per call.
type AnalogReader = ports.AnalogReader

// StorageMedium is the removable storage the day files land on.
type StorageMedium = ports.StorageMedium

// NetworkLink tracks reachability of the underlying network.
type NetworkLink = ports.NetworkLink

// BrokerSession is one connection to the publish/subscribe broker.
type BrokerSession = ports.BrokerSession

// ArchiveSink consumes batches of readings for long-term storage.
type ArchiveSink = ports.ArchiveSink

// Observability emits metrics and logs about sampling, drops, and uploads.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Policy bundles the engine's bounded-wait knobs.
type Policy = ports.Policy

// Re-exported errors for convenience.
var (
	ErrStorageUnavailable = domain.ErrStorageUnavailable
	ErrClockInvalid       = domain.ErrClockInvalid
	ErrWriteVerification  = domain.ErrWriteVerification
	ErrNetworkUnavailable = domain.ErrNetworkUnavailable
	ErrBrokerUnavailable  = domain.ErrBrokerUnavailable
)
