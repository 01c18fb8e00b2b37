package ports

import "time"

// NetworkLink tracks reachability of the underlying network. Join blocks for
// at most timeout; it is only ever called from inside the supervisor's
// bounded attempt.
type NetworkLink interface {
	Join(timeout time.Duration) error
	Connected() bool
	IP() string
}

// BrokerSession is one connection to the publish/subscribe broker. Connect
// must be bounded; Ping is the keepalive interleaved between publish retries.
type BrokerSession interface {
	Connect() error
	Connected() bool
	Publish(topic string, payload []byte, retain bool) error
	Ping() error
	Disconnect()
}
