// Package gateway assembles the serial bus, the engine and the transports.
package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"

	fx "github.com/robotalks/bleserial/pkg/framework"
	"github.com/robotalks/bleserial/pkg/halfduplex"
	"github.com/robotalks/bleserial/pkg/transport/ble"
	"github.com/robotalks/bleserial/pkg/transport/mqtt"
	"github.com/robotalks/bleserial/pkg/transport/websocket"
	"github.com/robotalks/bleserial/pkg/wire/gpio"
	"github.com/robotalks/bleserial/pkg/wire/serial"
)

// Gateway is the assembled gateway.
type Gateway struct {
	ID         string
	Bus        *halfduplex.Bus
	Mailbox    *halfduplex.Mailbox
	Publisher  *halfduplex.Publisher
	Inbound    *halfduplex.Inbound
	Engine     *halfduplex.Engine
	Transports []fx.Runnable

	handlers resultHandlers
}

type resultHandlers []halfduplex.ResultHandler

func (hs resultHandlers) HandleResult(ctx context.Context, request []byte, result halfduplex.Result) {
	for _, h := range hs {
		h.HandleResult(ctx, request, result)
	}
}

// New creates a Gateway on an opened bus without transports.
func New(id string, bus *halfduplex.Bus) *Gateway {
	g := &Gateway{
		ID:        id,
		Bus:       bus,
		Mailbox:   halfduplex.NewMailbox(),
		Publisher: halfduplex.NewPublisher(),
	}
	g.Inbound = halfduplex.NewInbound(g.Mailbox, g.Publisher)
	g.Engine = halfduplex.NewEngine(g.Mailbox, bus, g.Publisher)
	g.Engine.Handler = &g.handlers
	return g
}

// AddTransport adds a transport. Transports also handling results receive
// every transaction outcome.
func (g *Gateway) AddTransport(t fx.Runnable) *Gateway {
	g.Transports = append(g.Transports, t)
	if h, ok := t.(halfduplex.ResultHandler); ok {
		g.handlers = append(g.handlers, h)
	}
	return g
}

// Run runs the engine and the transports until ctx is done or the engine
// fails.
func (g *Gateway) Run(ctx context.Context) error {
	defer g.Bus.Close()
	return fx.NewRunnerWith(ctx).Go(g.Engine).Go(g.Transports...).Wait()
}

// NewDirection creates the direction line from the config.
func (c *Config) NewDirection(port *serial.Port) (halfduplex.Direction, error) {
	switch {
	case c.Direction == "" || c.Direction == "none":
		return halfduplex.NoDirection{}, nil
	case c.Direction == "rts":
		return serial.NewRTSDirection(port, c.DirectionActiveLow), nil
	case strings.HasPrefix(c.Direction, "gpio:"):
		return gpio.Open(strings.TrimPrefix(c.Direction, "gpio:"), c.DirectionActiveLow)
	}
	return nil, fmt.Errorf("unknown direction %q", c.Direction)
}

// NewGateway opens the serial port and creates the gateway with the
// configured transports.
func (c *Config) NewGateway() (*Gateway, error) {
	id, err := c.GatewayID()
	if err != nil {
		return nil, fmt.Errorf("gateway id: %w", err)
	}
	if c.Serial.Device == "" {
		return nil, fmt.Errorf("serial device must be specified")
	}
	port, err := serial.Open(c.Serial)
	if err != nil {
		return nil, err
	}
	dir, err := c.NewDirection(port)
	if err != nil {
		port.Close()
		return nil, err
	}
	bus, err := halfduplex.NewBus(port, dir)
	if err != nil {
		port.Close()
		return nil, err
	}

	g := New(id, bus)
	g.Engine.ReadTimeout = c.ReadTimeout
	g.Engine.SettleGap = c.SettleGap
	if err = c.addTransports(g); err != nil {
		bus.Close()
		return nil, err
	}
	return g, nil
}

func (c *Config) addTransports(g *Gateway) error {
	if c.BLE {
		g.AddTransport(ble.NewPeripheral(c.BLEName, g.Inbound, g.Publisher))
	}
	if c.MQTTBrokerURL != "" {
		meta := mqtt.Meta{ID: g.ID, Name: c.BLEName, Device: c.Serial.Device}
		t, err := mqtt.NewGateway(c.MQTTBrokerURL, meta, g.Inbound, g.Publisher)
		if err != nil {
			return fmt.Errorf("create MQTT transport error: %w", err)
		}
		g.AddTransport(t)
	}
	if c.WebsocketAddr != "" {
		g.AddTransport(websocket.NewServer(c.WebsocketAddr, g.Inbound, g.Publisher))
	}
	if len(g.Transports) == 0 {
		return fmt.Errorf("at least one transport is required")
	}
	return nil
}

// MustNewGateway creates Gateway and fails on error.
func (c *Config) MustNewGateway() *Gateway {
	g, err := c.NewGateway()
	if err != nil {
		log.Fatalln(err)
	}
	return g
}

// Name implements framework.Named.
func (g *Gateway) Name() string {
	return "gateway:" + g.ID
}
