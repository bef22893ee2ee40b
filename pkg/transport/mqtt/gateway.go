package mqtt

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/bleserial/pkg/halfduplex"
)

// WriteTimeout bounds a publish waiting for the outbound queue.
const WriteTimeout = 5 * time.Second

type publishFunc func(topic string, payload []byte, qos byte, retain bool) paho.Token

// Gateway exposes the inbound write path and the published value on
// MQTT topics.
type Gateway struct {
	Queue   *Queue
	Topics  Topics
	Handler halfduplex.WriteHandler
	Values  *halfduplex.Publisher

	metaJSON []byte
	values   *halfduplex.LatestValue
	publish  publishFunc
}

// NewGateway creates a Gateway and starts watching pub.
func NewGateway(brokerURL string, meta Meta, h halfduplex.WriteHandler, pub *halfduplex.Publisher) (*Gateway, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	topics := Topics{ID: meta.ID}
	opts.SetBinaryWill(topicPrefix+topics.Meta(), nil, 1, true)
	opts.SetWriteTimeout(WriteTimeout)
	if opts.ClientID == "" {
		opts.SetClientID("bleserial:" + meta.ID)
	}
	g := &Gateway{
		Queue:    NewQueue(opts, topicPrefix),
		Topics:   topics,
		Handler:  h,
		Values:   pub,
		metaJSON: metaJSON,
		values:   halfduplex.NewLatestValue(),
	}
	g.publish = g.Queue.PubWith
	g.Queue.OnConnect = func(*Queue) { g.onConnected() }
	pub.Watch(g.values.Put)
	return g, nil
}

// Name implements framework.Named.
func (g *Gateway) Name() string {
	return "mqtt"
}

// Run implements Runnable.
func (g *Gateway) Run(ctx context.Context) error {
	sub := g.Queue.Sub(g.Topics.RX(), g.handleWrite)
	token := g.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	g.sendValues(ctx)
	g.publish(g.Topics.Meta(), nil, 1, true).Wait()
	sub.Close()
	g.Queue.Close()
	return ctx.Err()
}

// HandleResult implements halfduplex.ResultHandler.
func (g *Gateway) HandleResult(_ context.Context, _ []byte, result halfduplex.Result) {
	g.publish(g.Topics.Status(), []byte(result.Kind.String()), 0, false)
}

func (g *Gateway) onConnected() {
	g.publish(g.Topics.Meta(), g.metaJSON, 1, true)
	g.Values.Replay(g.values.Put)
}

func (g *Gateway) handleWrite(_ string, payload []byte) {
	if err := g.Handler.HandleWrite(payload); err != nil {
		glog.Warningf("%s: %v", g.Topics.RX(), err)
	}
}

// sendValues publishes the latest value until ctx is done, so a stalled
// broker never holds up the publisher.
func (g *Gateway) sendValues(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case value := <-g.values.C():
			g.publishValue(value)
		}
	}
}

// flushValue publishes the pending value, if any.
func (g *Gateway) flushValue() bool {
	select {
	case value := <-g.values.C():
		g.publishValue(value)
		return true
	default:
		return false
	}
}

// An empty retained message removes the retained value, which readers
// take as empty.
func (g *Gateway) publishValue(value []byte) {
	g.publish(g.Topics.TX(), value, 1, true)
}
