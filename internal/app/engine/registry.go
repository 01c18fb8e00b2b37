package engine

// UploadRegistry is the bounded set of day files already republished by the
// parked uploader. At capacity the oldest entry is evicted, so a very old
// file could in principle be re-sent; the consumer deduplicates on
// (file, line) and the cap keeps memory fixed on small devices.
type UploadRegistry struct {
	cap   int
	order []string
	seen  map[string]struct{}
}

func NewUploadRegistry(capacity int) *UploadRegistry {
	if capacity <= 0 {
		capacity = 64
	}
	return &UploadRegistry{
		cap:  capacity,
		seen: make(map[string]struct{}, capacity),
	}
}

// Mark records name as uploaded, evicting the oldest entry at capacity.
func (r *UploadRegistry) Mark(name string) {
	if _, ok := r.seen[name]; ok {
		return
	}
	if len(r.order) >= r.cap {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.seen, oldest)
	}
	r.order = append(r.order, name)
	r.seen[name] = struct{}{}
}

// Contains reports whether name was already uploaded.
func (r *UploadRegistry) Contains(name string) bool {
	_, ok := r.seen[name]
	return ok
}

func (r *UploadRegistry) Len() int { return len(r.order) }
