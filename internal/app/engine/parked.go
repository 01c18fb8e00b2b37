package engine

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/volttrace/volttrace/internal/adapters/logfile"
	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

// ParkedDetector decides whether the battery is "parked": sustained
// low-magnitude current for a confirmation window of consecutive samples.
// Enter and exit thresholds form a hysteresis pair; with equal values it
// degrades to the single-threshold behavior.
type ParkedDetector struct {
	enter   float64
	exit    float64
	confirm int

	streak int
	parked bool
}

func NewParkedDetector(enterThreshold, exitThreshold float64, confirmTicks int) *ParkedDetector {
	if exitThreshold < enterThreshold {
		exitThreshold = enterThreshold
	}
	if confirmTicks <= 0 {
		confirmTicks = 1
	}
	return &ParkedDetector{enter: enterThreshold, exit: exitThreshold, confirm: confirmTicks}
}

// Observe feeds one accepted sample's current and returns the updated state.
func (d *ParkedDetector) Observe(currentAmps float64) bool {
	mag := math.Abs(currentAmps)
	if d.parked {
		if mag >= d.exit {
			d.parked = false
			d.streak = 0
		}
		return d.parked
	}

	if mag < d.enter {
		d.streak++
		if d.streak >= d.confirm {
			d.parked = true
		}
	} else {
		d.streak = 0
	}
	return d.parked
}

func (d *ParkedDetector) Parked() bool { return d.parked }

// backlogPublisher is what the uploader needs from the Publisher.
type backlogPublisher interface {
	PublishBacklogLine(file, date, metric string, line int, data string) error
}

// BacklogUploader is the batch-reconciliation variant of the live mirror:
// while parked and connected it periodically scans storage for day files not
// yet uploaded and republishes their contents line-by-line. Marking a file
// done only after every line succeeded makes re-runs idempotent: a partial
// failure leaves the file unmarked and it is retried whole on the next scan.
type BacklogUploader struct {
	medium   ports.StorageMedium
	clock    ports.Clock
	pub      backlogPublisher
	registry *UploadRegistry
	pol      ports.Policy
	obs      ports.Observability

	// metric name by filename prefix, e.g. "Amps " -> "current".
	prefixes map[string]string

	lastScan time.Duration
	scanned  bool
}

func NewBacklogUploader(
	medium ports.StorageMedium,
	clock ports.Clock,
	pub backlogPublisher,
	registry *UploadRegistry,
	prefixes map[string]string,
	pol ports.Policy,
	obs ports.Observability,
) *BacklogUploader {
	return &BacklogUploader{
		medium:   medium,
		clock:    clock,
		pub:      pub,
		registry: registry,
		prefixes: prefixes,
		pol:      pol,
		obs:      obs,
	}
}

// Tick runs a scan when parked, connected, and the scan interval elapsed.
func (u *BacklogUploader) Tick(parked, connected bool) {
	if !parked || !connected {
		return
	}
	now := u.clock.Monotonic()
	if u.scanned && now-u.lastScan < u.pol.BacklogScanInterval {
		return
	}
	u.scanned = true
	u.lastScan = now

	if _, err := u.Sync(); err != nil {
		u.obs.LogError("backlog_sync_failed", err)
	}
}

// Sync scans once and returns how many files were fully uploaded. Files from
// the current date are skipped: they are still being appended.
func (u *BacklogUploader) Sync() (int, error) {
	names, err := u.medium.List()
	if err != nil {
		return 0, fmt.Errorf("list storage: %w", err)
	}
	sort.Strings(names)

	today := u.clock.Now().Format(domain.DateLayout)
	uploaded := 0
	for _, name := range names {
		metric, date, ok := u.classify(name)
		if !ok || date == today || u.registry.Contains(name) {
			continue
		}

		if err := u.uploadFile(name, date, metric); err != nil {
			// Leave unmarked; the next scan retries the whole file.
			u.obs.LogError("backlog_upload_failed", err,
				ports.Field{Key: "file", Value: name})
			continue
		}

		u.registry.Mark(name)
		uploaded++
		u.obs.IncCounter("volttrace_backlog_files_uploaded_total", 1)
		u.obs.LogInfo("backlog_file_uploaded", ports.Field{Key: "file", Value: name})
	}
	return uploaded, nil
}

func (u *BacklogUploader) classify(name string) (metric, date string, ok bool) {
	for prefix, m := range u.prefixes {
		if d, matched := logfile.SplitDayFile(name, prefix); matched {
			return m, d, true
		}
	}
	return "", "", false
}

func (u *BacklogUploader) uploadFile(name, date, metric string) error {
	rc, err := u.medium.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	for i, line := range logfile.Lines(data) {
		if err := u.pub.PublishBacklogLine(name, date, metric, i, line); err != nil {
			return fmt.Errorf("line %d of %s: %w", i, name, err)
		}
	}
	return nil
}
