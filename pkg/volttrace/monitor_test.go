package volttrace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMonitorWritesDayFiles(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{
		Sample:  SampleConfig{Period: time.Second, WindowSize: 60},
		Storage: StorageConfig{Dir: dir},
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	clock := &stubClock{now: time.Date(2024, 6, 3, 14, 35, 0, 0, time.UTC)}
	m, err := FromConfig(cfg,
		WithClock(clock),
		WithObservability(&stubObservability{}),
	)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	defer m.Shutdown(context.Background())

	for i := 0; i < 3; i++ {
		m.Step()
		clock.Advance(time.Second)
	}

	ampsFile := filepath.Join(dir, "Amps 2024-06-03.txt")
	data, err := os.ReadFile(ampsFile)
	if err != nil {
		t.Fatalf("amps day file not written: %v", err)
	}
	if !strings.Contains(string(data), "14:35:00 --> ") {
		t.Fatalf("amps file missing minute header: %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "Volts 2024-06-03.txt")); err != nil {
		t.Fatalf("volts day file not written: %v", err)
	}
}

func TestFromConfigRejectsNilConfig(t *testing.T) {
	if _, err := FromConfig(nil); err == nil {
		t.Fatal("expected an error for a nil config")
	}
}

func TestOpenRejectsMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

type stubClock struct {
	now  time.Time
	mono time.Duration
}

func (c *stubClock) Now() time.Time { return c.now }
func (c *stubClock) Monotonic() time.Duration { return c.mono }

func (c *stubClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	c.mono += d
}

type stubObservability struct{}

func (s *stubObservability) LogInfo(string, ...Field)            {}
func (s *stubObservability) LogError(string, error, ...Field)    {}
func (s *stubObservability) LogCritical(string, error, ...Field) {}
func (s *stubObservability) IncCounter(string, float64)          {}
func (s *stubObservability) ObserveLatency(string, float64)      {}
func (s *stubObservability) SetGauge(string, float64)            {}
func (s *stubObservability) RecordDrop(string, error)            {}
