package mqtt

import (
	"context"
	"encoding/json"
	"testing"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/bleserial/pkg/halfduplex"
)

type published struct {
	topic   string
	payload []byte
	qos     byte
	retain  bool
}

type gatewayTestEnv struct {
	mailbox   *halfduplex.Mailbox
	publisher *halfduplex.Publisher
	gateway   *Gateway
	published []published
}

func newGatewayTestEnv(t *testing.T) *gatewayTestEnv {
	env := &gatewayTestEnv{
		mailbox:   halfduplex.NewMailbox(),
		publisher: halfduplex.NewPublisher(),
	}
	in := halfduplex.NewInbound(env.mailbox, env.publisher)
	g, err := NewGateway("mqtt://localhost:1883/robo/", Meta{ID: "gw1", Name: "BLE Serial"}, in, env.publisher)
	require.NoError(t, err)
	g.publish = func(topic string, payload []byte, qos byte, retain bool) paho.Token {
		env.published = append(env.published, published{topic, payload, qos, retain})
		return &paho.DummyToken{}
	}
	env.gateway = g
	return env
}

func TestGatewayInbound(t *testing.T) {
	env := newGatewayTestEnv(t)
	env.publisher.Publish(halfduplex.Matched([]byte{1, 2, 3}))
	env.published = nil

	env.gateway.handleWrite("gw1/rx", []byte{0xAA, 0x01, 0x02})
	require.Equal(t, 1, env.mailbox.Len())

	env.gateway.handleWrite("gw1/rx", []byte{0x00})
	require.Equal(t, 1, env.mailbox.Len())
	require.Empty(t, env.publisher.Value())
	require.True(t, env.gateway.flushValue())
	require.Equal(t, []published{{"gw1/tx", []byte{}, 1, true}}, env.published)
}

func TestGatewayPublishesValue(t *testing.T) {
	env := newGatewayTestEnv(t)
	env.publisher.Publish(halfduplex.Matched([]byte{0xAA, 0x01}))
	env.publisher.Publish(halfduplex.NoMatch)
	require.True(t, env.gateway.flushValue())
	require.False(t, env.gateway.flushValue())
	require.Equal(t, []published{{"gw1/tx", []byte{0xAA, 0x01}, 1, true}}, env.published)
}

func TestGatewayStatus(t *testing.T) {
	env := newGatewayTestEnv(t)
	env.gateway.HandleResult(context.Background(), []byte{1, 2, 3}, halfduplex.NoMatch)
	require.Equal(t, []published{{"gw1/status", []byte("nomatch"), 0, false}}, env.published)
}

func TestGatewayOnConnected(t *testing.T) {
	env := newGatewayTestEnv(t)
	env.publisher.Publish(halfduplex.Matched([]byte{0xAA, 0x01}))
	require.True(t, env.gateway.flushValue())
	env.published = nil

	env.gateway.onConnected()
	require.True(t, env.gateway.flushValue())
	require.Len(t, env.published, 2)
	require.Equal(t, "gw1/meta", env.published[0].topic)
	require.True(t, env.published[0].retain)
	var meta Meta
	require.NoError(t, json.Unmarshal(env.published[0].payload, &meta))
	require.Equal(t, Meta{ID: "gw1", Name: "BLE Serial"}, meta)
	require.Equal(t, published{"gw1/tx", []byte{0xAA, 0x01}, 1, true}, env.published[1])
}

func TestGatewayValueDoesNotBlockPublisher(t *testing.T) {
	env := newGatewayTestEnv(t)
	for i := byte(0); i < 4; i++ {
		env.publisher.Publish(halfduplex.Matched([]byte{0xAA, 0x01, i}))
	}
	env.publisher.Clear()
	require.Empty(t, env.published)
	require.True(t, env.gateway.flushValue())
	require.Equal(t, []published{{"gw1/tx", []byte{}, 1, true}}, env.published)
}
