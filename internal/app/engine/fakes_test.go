package engine

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

// fakeClock is advanced by hand so pacing tests are deterministic.
type fakeClock struct {
	now  time.Time
	mono time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 3, 14, 35, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Monotonic() time.Duration { return c.mono }

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	c.mono += d
}

type fakeReader struct {
	current float64
	voltage float64
	err     error
	reads   int
	closed  bool
}

func (r *fakeReader) Read() (float64, float64, error) {
	r.reads++
	return r.current, r.voltage, r.err
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type appendRecord struct {
	kind  domain.MetricKind
	value float64
	index int
}

type fakeAppender struct {
	records []appendRecord
	err     error
}

func (a *fakeAppender) Append(kind domain.MetricKind, value float64, indexInMinute int) error {
	if a.err != nil {
		return a.err
	}
	a.records = append(a.records, appendRecord{kind, value, indexInMinute})
	return nil
}

type fakeSamplePublisher struct {
	published []domain.Reading
	err       error
}

func (p *fakeSamplePublisher) PublishReading(r domain.Reading) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, r)
	return nil
}

type fakeLink struct {
	connected bool
	joinErr   error
	joins     int
	ip        string
}

func (l *fakeLink) Join(timeout time.Duration) error {
	l.joins++
	if l.joinErr != nil {
		return l.joinErr
	}
	l.connected = true
	return nil
}

func (l *fakeLink) Connected() bool { return l.connected }
func (l *fakeLink) IP() string      { return l.ip }

type publishRecord struct {
	topic   string
	payload []byte
	retain  bool
}

// fakeSession scripts connect outcomes and counts publish traffic.
type fakeSession struct {
	connectErrs  []error // consumed one per Connect; empty means success
	connects     int
	connected    bool
	published    []publishRecord
	publishFails int // fail this many publishes before succeeding
	publishErr   error
	pingErr      error
	pings        int
	attempts     int
}

func (s *fakeSession) Connect() error {
	s.connects++
	if len(s.connectErrs) > 0 {
		err := s.connectErrs[0]
		s.connectErrs = s.connectErrs[1:]
		if err != nil {
			return err
		}
	}
	s.connected = true
	return nil
}

func (s *fakeSession) Connected() bool { return s.connected }

func (s *fakeSession) Publish(topic string, payload []byte, retain bool) error {
	s.attempts++
	if s.publishFails > 0 {
		s.publishFails--
		return errors.New("publish refused")
	}
	if s.publishErr != nil {
		return s.publishErr
	}
	s.published = append(s.published, publishRecord{topic, payload, retain})
	return nil
}

func (s *fakeSession) Ping() error {
	s.pings++
	return s.pingErr
}

func (s *fakeSession) Disconnect() { s.connected = false }

type fakeObs struct {
	mu       sync.Mutex
	counters map[string]float64
	gauges   map[string]float64
	drops    []string
	errs     []string
}

func newFakeObs() *fakeObs {
	return &fakeObs{
		counters: make(map[string]float64),
		gauges:   make(map[string]float64),
	}
}

func (o *fakeObs) LogInfo(msg string, fields ...ports.Field) {}

func (o *fakeObs) LogError(msg string, err error, fields ...ports.Field) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, msg)
}

func (o *fakeObs) LogCritical(msg string, err error, fields ...ports.Field) {
	o.LogError(msg, err, fields...)
}

func (o *fakeObs) IncCounter(name string, v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counters[name] += v
}

func (o *fakeObs) ObserveLatency(name string, seconds float64) {}

func (o *fakeObs) SetGauge(name string, v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gauges[name] = v
}

func (o *fakeObs) RecordDrop(metric string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drops = append(o.drops, metric)
}

// fakeStore is an in-memory storage medium for the uploader tests.
type fakeStore struct {
	files map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (m *fakeStore) OpenAppend(name string) (io.WriteCloser, error) {
	return nil, errors.New("append not supported in this fake")
}

func (m *fakeStore) Open(name string) (io.ReadCloser, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, errors.New("no such file: " + name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *fakeStore) Size(name string) (int64, error) {
	return int64(len(m.files[name])), nil
}

func (m *fakeStore) List() ([]string, error) {
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	return names, nil
}

func (m *fakeStore) Reinit() error { return nil }

var (
	_ ports.Clock            = (*fakeClock)(nil)
	_ ports.AnalogReader     = (*fakeReader)(nil)
	_ ports.LogAppender      = (*fakeAppender)(nil)
	_ ports.SamplePublisher  = (*fakeSamplePublisher)(nil)
	_ ports.NetworkLink      = (*fakeLink)(nil)
	_ ports.BrokerSession    = (*fakeSession)(nil)
	_ ports.Observability    = (*fakeObs)(nil)
	_ ports.StorageMedium    = (*fakeStore)(nil)
)
