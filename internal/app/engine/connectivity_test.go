package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/volttrace/volttrace/internal/ports"
)

func supervisorPolicy() ports.Policy {
	return ports.Policy{
		NetworkRetryInterval:  30 * time.Second,
		JoinTimeout:           time.Second,
		BrokerConnectAttempts: 3,
		BrokerConnectBackoff:  2 * time.Second,
	}
}

func newTestSupervisor(link *fakeLink, session *fakeSession, clock *fakeClock, onConnect func()) *Supervisor {
	s := NewSupervisor(link, session, clock, onConnect, supervisorPolicy(), newFakeObs())
	s.sleep = func(time.Duration) {}
	return s
}

func TestSupervisorConnects(t *testing.T) {
	link := &fakeLink{ip: "192.168.4.17"}
	session := &fakeSession{}
	clock := newFakeClock()
	fired := 0
	s := newTestSupervisor(link, session, clock, func() { fired++ })

	if got := s.Tick(); got != Connected {
		t.Fatalf("state = %v, want connected", got)
	}
	if link.joins != 1 || session.connects != 1 {
		t.Fatalf("joins = %d connects = %d, want 1/1", link.joins, session.connects)
	}
	if fired != 1 {
		t.Fatalf("onConnect fired %d times, want 1", fired)
	}
}

func TestSupervisorBoundedBrokerAttempts(t *testing.T) {
	link := &fakeLink{connected: true}
	session := &fakeSession{connectErrs: []error{
		errors.New("refused"), errors.New("refused"), errors.New("refused"),
	}}
	clock := newFakeClock()
	slept := 0
	s := NewSupervisor(link, session, clock, nil, supervisorPolicy(), newFakeObs())
	s.sleep = func(time.Duration) { slept++ }

	if got := s.Tick(); got != Disconnected {
		t.Fatalf("state = %v, want disconnected after exhausted attempts", got)
	}
	if session.connects != 3 {
		t.Fatalf("connects = %d, want 3", session.connects)
	}
	// Backoff between attempts, not after the last one.
	if slept != 2 {
		t.Fatalf("slept %d times, want 2", slept)
	}
}

func TestSupervisorRetryGate(t *testing.T) {
	link := &fakeLink{joinErr: errors.New("no carrier")}
	session := &fakeSession{}
	clock := newFakeClock()
	s := newTestSupervisor(link, session, clock, nil)

	s.Tick()
	if link.joins != 1 {
		t.Fatalf("joins = %d, want 1", link.joins)
	}

	// Hammering Tick inside the retry interval must not retry.
	for i := 0; i < 10; i++ {
		clock.Advance(time.Second)
		s.Tick()
	}
	if link.joins != 1 {
		t.Fatalf("joins = %d, retry gate leaked attempts", link.joins)
	}

	clock.Advance(supervisorPolicy().NetworkRetryInterval)
	s.Tick()
	if link.joins != 2 {
		t.Fatalf("joins = %d, want a second attempt after the interval", link.joins)
	}
}

func TestSupervisorJoinFailureSkipsBroker(t *testing.T) {
	link := &fakeLink{joinErr: errors.New("no carrier")}
	session := &fakeSession{}
	s := newTestSupervisor(link, session, newFakeClock(), nil)

	if got := s.Tick(); got != Disconnected {
		t.Fatalf("state = %v, want disconnected", got)
	}
	if session.connects != 0 {
		t.Fatal("broker connect must not be attempted without the network")
	}
}

func TestSupervisorDetectsLostConnection(t *testing.T) {
	link := &fakeLink{connected: true}
	session := &fakeSession{}
	clock := newFakeClock()
	s := newTestSupervisor(link, session, clock, nil)

	s.Tick()
	if !s.Connected() {
		t.Fatal("setup: expected connected")
	}

	session.connected = false
	if got := s.Tick(); got != Disconnected {
		t.Fatalf("state = %v, want disconnected after session loss", got)
	}

	// Reconnect happens on the next gated attempt, not immediately.
	clock.Advance(supervisorPolicy().NetworkRetryInterval)
	if got := s.Tick(); got != Connected {
		t.Fatalf("state = %v, want reconnected", got)
	}
	if session.connects != 2 {
		t.Fatalf("connects = %d, want 2", session.connects)
	}
}
