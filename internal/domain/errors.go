package domain

import "errors"

// Steady-state error taxonomy. All of these are local-and-reported: the
// sampling loop keeps running, nothing here is allowed to halt it.
var (
	// ErrStorageUnavailable means an open or append failed even after one
	// reinitialization of the storage medium. The sample's data for that
	// metric is dropped.
	ErrStorageUnavailable = errors.New("volttrace: storage unavailable")

	// ErrClockInvalid means the RTC reported an implausible date; the write
	// is skipped entirely to avoid corrupting a filename.
	ErrClockInvalid = errors.New("volttrace: clock reports implausible date")

	// ErrWriteVerification means a write landed but the file size check
	// failed afterwards. Diagnostic only; the write is never retried.
	ErrWriteVerification = errors.New("volttrace: write verification failed")

	// ErrNetworkUnavailable means the network link is down or a join timed out.
	ErrNetworkUnavailable = errors.New("volttrace: network unavailable")

	// ErrBrokerUnavailable means the broker session is down or a connect
	// attempt failed.
	ErrBrokerUnavailable = errors.New("volttrace: broker unavailable")
)
