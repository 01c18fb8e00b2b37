// Package opcuaadc reads current and voltage from two OPC UA nodes with one
// polled read request per tick. Polling, not subscription: the sampling loop
// is single-threaded and pulls at its own pace.
package opcuaadc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"

	"github.com/volttrace/volttrace/internal/ports"
)

type Config struct {
	Endpoint        string        `yaml:"endpoint"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	SecurityMode    string        `yaml:"security_mode"`
	SecurityPolicy  string        `yaml:"security_policy"`
	ApplicationName string        `yaml:"application_name"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`

	CurrentNodeID string `yaml:"current_node_id"`
	VoltageNodeID string `yaml:"voltage_node_id"`
}

func (c *Config) ApplyDefaults() {
	if c.SecurityMode == "" {
		c.SecurityMode = "None"
	}
	if c.SecurityPolicy == "" {
		c.SecurityPolicy = "None"
	}
	if c.ApplicationName == "" {
		c.ApplicationName = "volttrace edge"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 2 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.CurrentNodeID == "" || c.VoltageNodeID == "" {
		return errors.New("current_node_id and voltage_node_id are required")
	}
	return nil
}

type Reader struct {
	cfg     Config
	client  *opcua.Client
	request *ua.ReadRequest
}

func NewReader(cfg Config) (*Reader, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("opcuaadc config: %w", err)
	}

	curID, err := ua.ParseNodeID(cfg.CurrentNodeID)
	if err != nil {
		return nil, fmt.Errorf("parse current node id %q: %w", cfg.CurrentNodeID, err)
	}
	voltID, err := ua.ParseNodeID(cfg.VoltageNodeID)
	if err != nil {
		return nil, fmt.Errorf("parse voltage node id %q: %w", cfg.VoltageNodeID, err)
	}

	opts := []opcua.Option{
		opcua.SecurityModeString(cfg.SecurityMode),
		opcua.SecurityPolicy(cfg.SecurityPolicy),
		opcua.ApplicationName(cfg.ApplicationName),
		opcua.AutoReconnect(true),
	}
	if cfg.Username != "" {
		opts = append(opts, opcua.AuthUsername(cfg.Username, cfg.Password))
	} else {
		opts = append(opts, opcua.AuthAnonymous())
	}

	client, err := opcua.NewClient(cfg.Endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("opcuaadc new client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("opcuaadc connect %s: %w", cfg.Endpoint, err)
	}

	return &Reader{
		cfg:    cfg,
		client: client,
		request: &ua.ReadRequest{
			TimestampsToReturn: ua.TimestampsToReturnNeither,
			NodesToRead: []*ua.ReadValueID{
				{NodeID: curID, AttributeID: ua.AttributeIDValue},
				{NodeID: voltID, AttributeID: ua.AttributeIDValue},
			},
		},
	}, nil
}

func (r *Reader) Read() (float64, float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.RequestTimeout)
	defer cancel()

	resp, err := r.client.Read(ctx, r.request)
	if err != nil {
		return 0, 0, fmt.Errorf("opcuaadc read: %w", err)
	}
	if len(resp.Results) != 2 {
		return 0, 0, fmt.Errorf("opcuaadc read: expected 2 results, got %d", len(resp.Results))
	}
	for i, res := range resp.Results {
		if res.Status != ua.StatusOK {
			return 0, 0, fmt.Errorf("opcuaadc read node %d: %s", i, res.Status)
		}
	}

	current, ok := variantToFloat(resp.Results[0].Value)
	if !ok {
		return 0, 0, fmt.Errorf("opcuaadc: current node has non-numeric type %T", resp.Results[0].Value.Value())
	}
	voltage, ok := variantToFloat(resp.Results[1].Value)
	if !ok {
		return 0, 0, fmt.Errorf("opcuaadc: voltage node has non-numeric type %T", resp.Results[1].Value.Value())
	}
	return current, voltage, nil
}

func (r *Reader) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.RequestTimeout)
	defer cancel()
	return r.client.Close(ctx)
}

func variantToFloat(v *ua.Variant) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.Value().(type) {
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case int8:
		return float64(val), true
	case uint8:
		return float64(val), true
	case int16:
		return float64(val), true
	case uint16:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

var _ ports.AnalogReader = (*Reader)(nil)
