// Package ble exposes the gateway as a Nordic UART Service peripheral.
//
// Writes to the RX characteristic are inbound payloads; the TX
// characteristic holds the published value for clients to read.
package ble

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"tinygo.org/x/bluetooth"

	"github.com/robotalks/bleserial/pkg/halfduplex"
)

// DefaultLocalName is the advertised name.
const DefaultLocalName = "BLE Serial"

// ValueWriter sets the value of a characteristic.
type ValueWriter interface {
	Write(p []byte) (int, error)
}

// Peripheral advertises the service and relays characteristic access.
type Peripheral struct {
	Adapter   *bluetooth.Adapter
	LocalName string
	Handler   halfduplex.WriteHandler
	Values    *halfduplex.Publisher

	tx     ValueWriter
	values *halfduplex.LatestValue
}

// NewPeripheral creates a Peripheral on the default adapter.
func NewPeripheral(name string, h halfduplex.WriteHandler, pub *halfduplex.Publisher) *Peripheral {
	if name == "" {
		name = DefaultLocalName
	}
	return &Peripheral{
		Adapter:   bluetooth.DefaultAdapter,
		LocalName: name,
		Handler:   h,
		Values:    pub,
		values:    halfduplex.NewLatestValue(),
	}
}

// Name implements framework.Named.
func (p *Peripheral) Name() string {
	return "ble"
}

// Run implements Runnable.
func (p *Peripheral) Run(ctx context.Context) error {
	if err := p.Adapter.Enable(); err != nil {
		return fmt.Errorf("enable adapter: %w", err)
	}
	var rxChar, txChar bluetooth.Characteristic
	err := p.Adapter.AddService(&bluetooth.Service{
		UUID: bluetooth.ServiceUUIDNordicUART,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &rxChar,
				UUID:   bluetooth.CharacteristicUUIDUARTRX,
				Flags: bluetooth.CharacteristicWritePermission |
					bluetooth.CharacteristicWriteWithoutResponsePermission,
				WriteEvent: func(_ bluetooth.Connection, _ int, value []byte) {
					p.handleWrite(value)
				},
			},
			{
				Handle: &txChar,
				UUID:   bluetooth.CharacteristicUUIDUARTTX,
				Flags:  bluetooth.CharacteristicReadPermission,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("add service: %w", err)
	}
	p.attach(&txChar)

	adv := p.Adapter.DefaultAdvertisement()
	err = adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    p.LocalName,
		ServiceUUIDs: []bluetooth.UUID{bluetooth.ServiceUUIDNordicUART},
	})
	if err != nil {
		return fmt.Errorf("configure advertisement: %w", err)
	}
	if err = adv.Start(); err != nil {
		return fmt.Errorf("start advertisement: %w", err)
	}
	glog.Infof("advertising %q", p.LocalName)
	p.sendValues(ctx)
	adv.Stop()
	return ctx.Err()
}

// attach binds the TX characteristic to the published value. Values are
// written by sendValues.
func (p *Peripheral) attach(tx ValueWriter) {
	p.tx = tx
	p.Values.Watch(p.values.Put)
	p.Values.Replay(p.values.Put)
}

func (p *Peripheral) sendValues(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case value := <-p.values.C():
			p.setValue(value)
		}
	}
}

// flushValue writes the pending value, if any.
func (p *Peripheral) flushValue() bool {
	select {
	case value := <-p.values.C():
		p.setValue(value)
		return true
	default:
		return false
	}
}

func (p *Peripheral) handleWrite(value []byte) {
	if err := p.Handler.HandleWrite(value); err != nil {
		glog.Warningf("rx: %v", err)
	}
}

func (p *Peripheral) setValue(value []byte) {
	if _, err := p.tx.Write(value); err != nil {
		glog.Warningf("tx: %v", err)
	}
}
