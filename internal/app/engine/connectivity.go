package engine

import (
	"fmt"
	"time"

	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

var (
	errNetworkDown = fmt.Errorf("network link down: %w", domain.ErrNetworkUnavailable)
	errSessionDown = fmt.Errorf("broker session down: %w", domain.ErrBrokerUnavailable)
)

// ConnState is the supervisor's view of the network + broker pair.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Supervisor tracks network reachability and the broker session, performing
// bounded-retry reconnects on a fixed interval. The retry gate guarantees the
// sampling loop is never stalled by connectivity work except during one
// bounded attempt.
type Supervisor struct {
	link    ports.NetworkLink
	session ports.BrokerSession
	clock   ports.Clock
	pol     ports.Policy
	obs     ports.Observability

	// onConnect fires after a successful broker connect, used to publish
	// the retained "online" status.
	onConnect func()

	// sleep is swappable so tests do not wait out real backoffs.
	sleep func(time.Duration)

	state       ConnState
	lastAttempt time.Duration
	attempted   bool
}

func NewSupervisor(
	link ports.NetworkLink,
	session ports.BrokerSession,
	clock ports.Clock,
	onConnect func(),
	pol ports.Policy,
	obs ports.Observability,
) *Supervisor {
	if pol.BrokerConnectAttempts <= 0 {
		pol.BrokerConnectAttempts = 3
	}
	return &Supervisor{
		link:      link,
		session:   session,
		clock:     clock,
		pol:       pol,
		obs:       obs,
		onConnect: onConnect,
		sleep:     time.Sleep,
	}
}

func (s *Supervisor) State() ConnState { return s.state }

func (s *Supervisor) Connected() bool { return s.state == Connected }

// Tick advances the state machine by at most one bounded attempt.
func (s *Supervisor) Tick() ConnState {
	defer func() {
		s.obs.SetGauge("volttrace_connectivity_state", float64(s.state))
	}()

	if s.state == Connected {
		if s.link.Connected() && s.session.Connected() {
			return s.state
		}
		s.obs.LogError("connection_lost", errConnectionDropped(s.link, s.session))
		s.state = Disconnected
		return s.state
	}

	now := s.clock.Monotonic()
	if s.attempted && now-s.lastAttempt < s.pol.NetworkRetryInterval {
		return s.state
	}
	s.attempted = true
	s.lastAttempt = now
	s.state = Connecting

	if !s.link.Connected() {
		if err := s.link.Join(s.pol.JoinTimeout); err != nil {
			s.obs.LogError("network_join_failed", err)
			s.state = Disconnected
			return s.state
		}
	}

	for attempt := 1; attempt <= s.pol.BrokerConnectAttempts; attempt++ {
		err := s.session.Connect()
		if err == nil {
			s.state = Connected
			s.obs.IncCounter("volttrace_broker_reconnects_total", 1)
			s.obs.LogInfo("broker_connected",
				ports.Field{Key: "attempt", Value: attempt},
				ports.Field{Key: "ip", Value: s.link.IP()})
			if s.onConnect != nil {
				s.onConnect()
			}
			return s.state
		}
		s.obs.LogError("broker_connect_failed", err,
			ports.Field{Key: "attempt", Value: attempt})
		if attempt < s.pol.BrokerConnectAttempts {
			s.sleep(s.pol.BrokerConnectBackoff)
		}
	}

	s.state = Disconnected
	return s.state
}

func errConnectionDropped(link ports.NetworkLink, session ports.BrokerSession) error {
	if !link.Connected() {
		return errNetworkDown
	}
	return errSessionDown
}
