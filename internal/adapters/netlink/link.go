// Package netlink implements ports.NetworkLink on top of host networking.
// On a host the OS owns the association, so Join only verifies that a
// non-loopback address exists; the bounded-timeout contract still holds.
package netlink

import (
	"fmt"
	"net"
	"time"

	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

type HostLink struct{}

func NewHostLink() *HostLink { return &HostLink{} }

func (l *HostLink) Join(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if l.Connected() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("join timed out after %s: %w", timeout, domain.ErrNetworkUnavailable)
		}
		time.Sleep(250 * time.Millisecond)
	}
}

func (l *HostLink) Connected() bool {
	return l.IP() != ""
}

// IP returns the first non-loopback IPv4 address, empty when offline.
func (l *HostLink) IP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}

var _ ports.NetworkLink = (*HostLink)(nil)
