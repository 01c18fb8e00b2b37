package ports

import "time"

// Policy carries every bounded-wait and pacing knob of the engine. Nothing in
// the core retries unboundedly; every wait below has a count or a deadline.
type Policy struct {
	// Sampling.
	SamplePeriod time.Duration
	WindowSize   int

	// Connectivity supervisor.
	NetworkRetryInterval  time.Duration
	JoinTimeout           time.Duration
	BrokerConnectAttempts int
	BrokerConnectBackoff  time.Duration

	// Live publisher.
	PublishAttempts   int
	PublishRetryDelay time.Duration

	// Parked detection and backlog upload.
	ParkedEnterThreshold float64
	ParkedExitThreshold  float64
	ParkedConfirmTicks   int
	BacklogScanInterval  time.Duration
	UploadRegistryCap    int

	// Archive batching.
	ArchiveFlushEvery int
	ArchiveBacklogCap int

	// Host loop idle between tick polls.
	LoopIdle time.Duration
}
