package ports

// AnalogReader wraps the analog front-end. Read returns one instantaneous
// current/voltage pair; it must be bounded (the adapters carry their own
// request timeouts) because it runs on the sampling loop.
type AnalogReader interface {
	Read() (currentAmps, voltageVolts float64, err error)
	Close() error
}
