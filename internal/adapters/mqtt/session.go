// Package mqtt implements ports.BrokerSession on eclipse/paho. The session
// installs a retained last-will on the status topic so the broker announces
// "offline" by itself after an ungraceful disconnect.
package mqtt

import (
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

type Config struct {
	Enabled   bool   `yaml:"enabled"`
	BrokerURL string `yaml:"broker_url"`
	ClientID  string `yaml:"client_id"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	TopicBase string `yaml:"topic_base"`

	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
	KeepAlive      time.Duration `yaml:"keep_alive"`
}

func (c *Config) ApplyDefaults() {
	if c.ClientID == "" {
		c.ClientID = "volttrace-" + uuid.NewString()[:8]
	}
	if c.TopicBase == "" {
		c.TopicBase = "volttrace"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 5 * time.Second
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = 30 * time.Second
	}
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.BrokerURL == "" {
		return errors.New("broker_url is required when broker is enabled")
	}
	return nil
}

// Session wraps one paho client. The client is rebuilt on every Connect so
// the last-will payload can carry the address assigned at join time.
type Session struct {
	cfg    Config
	will   func() []byte
	client pahomqtt.Client
}

// NewSession builds a session; will, when non-nil, supplies the retained
// last-will payload for "<topic_base>/status" at connect time.
func NewSession(cfg Config, will func() []byte) *Session {
	cfg.ApplyDefaults()
	return &Session{cfg: cfg, will: will}
}

func (s *Session) Connect() error {
	opts := pahomqtt.NewClientOptions().
		AddBroker(s.cfg.BrokerURL).
		SetClientID(s.cfg.ClientID).
		SetKeepAlive(s.cfg.KeepAlive).
		SetConnectTimeout(s.cfg.ConnectTimeout).
		SetAutoReconnect(false). // reconnects are the supervisor's job
		SetCleanSession(true)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username).SetPassword(s.cfg.Password)
	}
	if s.will != nil {
		opts.SetBinaryWill(s.cfg.TopicBase+"/status", s.will(), 1, true)
	}

	if s.client != nil && s.client.IsConnectionOpen() {
		return nil
	}
	s.client = pahomqtt.NewClient(opts)

	token := s.client.Connect()
	if !token.WaitTimeout(s.cfg.ConnectTimeout) {
		return fmt.Errorf("connect %s timed out: %w", s.cfg.BrokerURL, domain.ErrBrokerUnavailable)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect %s: %v: %w", s.cfg.BrokerURL, err, domain.ErrBrokerUnavailable)
	}
	return nil
}

func (s *Session) Connected() bool {
	return s.client != nil && s.client.IsConnectionOpen()
}

func (s *Session) Publish(topic string, payload []byte, retain bool) error {
	if !s.Connected() {
		return domain.ErrBrokerUnavailable
	}
	token := s.client.Publish(topic, 0, retain, payload)
	if !token.WaitTimeout(s.cfg.PublishTimeout) {
		return fmt.Errorf("publish %s timed out: %w", topic, domain.ErrBrokerUnavailable)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Ping is the keepalive interleaved between publish retries. Paho drives the
// protocol-level PINGREQ itself, so this verifies the connection is still
// open and lets a dead one surface before the next retry.
func (s *Session) Ping() error {
	if !s.Connected() {
		return domain.ErrBrokerUnavailable
	}
	return nil
}

func (s *Session) Disconnect() {
	if s.client != nil {
		s.client.Disconnect(250)
	}
}

var _ ports.BrokerSession = (*Session)(nil)
