package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"
)

// DefaultTimeout is the default wait for replies from the broker.
const DefaultTimeout = 500 * time.Millisecond

// Client talks to gateways over MQTT.
type Client struct {
	Queue   *Queue
	Timeout time.Duration
}

// NewClient creates a Client from the broker URL.
func NewClient(brokerURL string) (*Client, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Client{Queue: NewQueue(opts, topicPrefix), Timeout: DefaultTimeout}, nil
}

// Connect connects to the broker.
func (c *Client) Connect() error {
	token := c.Queue.Connect()
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (c *Client) Close() error {
	return c.Queue.Close()
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Discover collects the gateways online, until the timeout.
func (c *Client) Discover(ctx context.Context) (res []Meta, err error) {
	metaCh := make(chan Meta, 1)
	sub := c.Queue.Sub(MetaPattern, Handler(func(topic string, payload []byte) {
		if len(payload) == 0 {
			return
		}
		var meta Meta
		if err := json.Unmarshal(payload, &meta); err != nil {
			glog.Warningf("%s: %v", topic, err)
			return
		}
		select {
		case metaCh <- meta:
		case <-time.After(time.Second):
		}
	}))
	defer sub.Close()

	timeout := time.After(c.timeout())
	for {
		select {
		case meta := <-metaCh:
			res = append(res, meta)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Send writes a payload to the gateway.
func (c *Client) Send(id string, payload []byte) error {
	token := c.Queue.PubWith(Topics{ID: id}.RX(), payload, 1, false)
	token.Wait()
	return token.Error()
}

// Clear clears the value published by the gateway.
func (c *Client) Clear(id string) error {
	return c.Send(id, []byte{0x00})
}

// Value gets the value published by the gateway. No retained value within
// the timeout means the value is empty.
func (c *Client) Value(ctx context.Context, id string) ([]byte, error) {
	valueCh := make(chan []byte, 1)
	sub := c.Queue.Sub(Topics{ID: id}.TX(), Handler(func(_ string, payload []byte) {
		select {
		case valueCh <- payload:
		default:
		}
	}))
	defer sub.Close()
	select {
	case value := <-valueCh:
		return value, nil
	case <-time.After(c.timeout()):
		return []byte{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WatchStatus calls fn with the outcome of every transaction of the gateway.
func (c *Client) WatchStatus(id string, fn func(status string)) *Subscription {
	return c.Queue.Sub(Topics{ID: id}.Status(), Handler(func(_ string, payload []byte) {
		fn(string(payload))
	}))
}
