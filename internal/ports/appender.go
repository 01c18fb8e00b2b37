package ports

import "github.com/volttrace/volttrace/internal/domain"

// LogAppender is the durability seam the scheduler writes through. One call
// appends exactly one value to one metric's day file at the given position
// inside the current minute window.
type LogAppender interface {
	Append(kind domain.MetricKind, value float64, indexInMinute int) error
}

// SamplePublisher is the optional live mirror of accepted readings. A nil
// publisher means the messaging capability was not configured.
type SamplePublisher interface {
	PublishReading(r domain.Reading) error
}

// ArchiveSink consumes batches of accepted readings for long-term storage.
// Failures are reported and the batch is retried later; never fatal.
type ArchiveSink interface {
	WriteBatch(readings []domain.Reading) error
	Name() string
}
