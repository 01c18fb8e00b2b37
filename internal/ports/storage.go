package ports

import "io"

// StorageMedium abstracts the removable storage the log writer appends to.
// Handles are never held across operations: open, act, close, every time,
// so a mid-operation power loss corrupts at most one append.
type StorageMedium interface {
	// OpenAppend opens name for appending, creating it if absent.
	OpenAppend(name string) (io.WriteCloser, error)

	// Open opens name for reading.
	Open(name string) (io.ReadCloser, error)

	// Size returns the current byte size of name.
	Size(name string) (int64, error)

	// List returns the names of all files on the medium.
	List() ([]string, error)

	// Reinit reinitializes the storage subsystem after a failure, the
	// equivalent of re-mounting a card. Called at most once per append.
	Reinit() error
}
