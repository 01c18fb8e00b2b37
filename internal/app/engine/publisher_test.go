package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

func publisherPolicy() ports.Policy {
	return ports.Policy{PublishAttempts: 3, PublishRetryDelay: 100 * time.Millisecond}
}

func newTestPublisher(session *fakeSession, obs *fakeObs) *Publisher {
	p := NewPublisher(session, "volttrace", publisherPolicy(), obs)
	p.sleep = func(time.Duration) {}
	return p
}

func TestPublishReadingMirrorsBothTopics(t *testing.T) {
	session := &fakeSession{connected: true}
	p := newTestPublisher(session, newFakeObs())

	r := domain.Reading{
		Current: 1.25,
		Voltage: 12.71,
		TakenAt: time.Date(2024, 6, 3, 14, 35, 12, 0, time.UTC),
	}
	if err := p.PublishReading(r); err != nil {
		t.Fatalf("PublishReading: %v", err)
	}

	if len(session.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(session.published))
	}
	if session.published[0].topic != "volttrace/current" ||
		session.published[1].topic != "volttrace/voltage" {
		t.Fatalf("topics = %s, %s", session.published[0].topic, session.published[1].topic)
	}

	var got samplePayload
	if err := json.Unmarshal(session.published[0].payload, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.Current != 1.25 || got.Voltage != 12.71 || got.Timestamp != "2024-06-03 14:35:12" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestPublishAbandonsAfterBoundedAttempts(t *testing.T) {
	session := &fakeSession{connected: true, publishErr: errors.New("timeout")}
	obs := newFakeObs()
	p := newTestPublisher(session, obs)

	err := p.PublishStatus("online", "10.0.0.5")
	if err == nil {
		t.Fatal("expected an error once the retry budget is spent")
	}
	if !strings.Contains(err.Error(), "abandoned after 3 attempts") {
		t.Fatalf("error = %v", err)
	}
	if session.attempts != 3 {
		t.Fatalf("attempts = %d, want 3", session.attempts)
	}
	if session.pings != 2 {
		t.Fatalf("pings = %d, want one before each retry", session.pings)
	}
	if obs.counters["volttrace_publish_failures_total"] != 1 {
		t.Fatalf("failure counter = %v", obs.counters["volttrace_publish_failures_total"])
	}
}

func TestPublishRecoversWithinBudget(t *testing.T) {
	session := &fakeSession{connected: true, publishFails: 2}
	p := newTestPublisher(session, newFakeObs())

	if err := p.PublishStatus("online", "10.0.0.5"); err != nil {
		t.Fatalf("publish should succeed on the third attempt: %v", err)
	}
	if session.attempts != 3 {
		t.Fatalf("attempts = %d, want 3", session.attempts)
	}
	if !session.published[0].retain {
		t.Fatal("status messages must be retained")
	}
}

func TestPublishDeadSessionFailsFast(t *testing.T) {
	session := &fakeSession{
		connected:  true,
		publishErr: errors.New("timeout"),
		pingErr:    errors.New("no pong"),
	}
	p := newTestPublisher(session, newFakeObs())

	err := p.PublishStatus("online", "10.0.0.5")
	if err == nil {
		t.Fatal("expected failure")
	}
	// The failed keepalive short-circuits the remaining attempts.
	if session.attempts != 1 {
		t.Fatalf("attempts = %d, want 1", session.attempts)
	}
}

func TestPublishReadingOneTopicFailingStillTriesOther(t *testing.T) {
	session := &fakeSession{connected: true, publishFails: 3}
	p := newTestPublisher(session, newFakeObs())

	err := p.PublishReading(domain.Reading{TakenAt: time.Date(2024, 6, 3, 14, 35, 0, 0, time.UTC)})
	if err == nil {
		t.Fatal("current topic exhausted its budget, want an error")
	}
	// The voltage topic still got through after the current topic burned
	// the scripted failures.
	if len(session.published) != 1 || session.published[0].topic != "volttrace/voltage" {
		t.Fatalf("published = %+v", session.published)
	}
}

func TestPublishBacklogLinePayload(t *testing.T) {
	session := &fakeSession{connected: true}
	p := newTestPublisher(session, newFakeObs())

	err := p.PublishBacklogLine("Amps 2024-06-02.txt", "2024-06-02", "current", 4, "00:04:00 --> 1.2, 1.3")
	if err != nil {
		t.Fatalf("PublishBacklogLine: %v", err)
	}
	if session.published[0].topic != "volttrace/backlog" {
		t.Fatalf("topic = %s", session.published[0].topic)
	}

	var got backlogPayload
	if err := json.Unmarshal(session.published[0].payload, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.File != "Amps 2024-06-02.txt" || got.Line != 4 || got.Metric != "current" {
		t.Fatalf("payload = %+v", got)
	}
}
