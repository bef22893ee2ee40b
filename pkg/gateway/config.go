package gateway

import (
	"flag"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/bleserial/pkg/halfduplex"
	"github.com/robotalks/bleserial/pkg/transport/ble"
	"github.com/robotalks/bleserial/pkg/wire/serial"
)

// Config defines the gateway setup.
type Config struct {
	ID string

	Serial serial.Config
	// Direction selects the direction line: "none", "rts" or
	// "gpio:<pin name>", e.g. "gpio:GPIO11".
	Direction string
	// DirectionActiveLow inverts the direction line.
	DirectionActiveLow bool

	ReadTimeout time.Duration
	SettleGap   time.Duration

	// BLE enables the Nordic UART Service peripheral.
	BLE     bool
	BLEName string

	// MQTTBrokerURL enables the MQTT transport.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// WebsocketAddr enables the websocket transport.
	WebsocketAddr string
}

var defaultConfig = Config{
	Serial:      serial.DefaultConfig,
	Direction:   "rts",
	ReadTimeout: halfduplex.DefaultReadTimeout,
	SettleGap:   10 * time.Millisecond,
	BLE:         true,
	BLEName:     ble.DefaultLocalName,
}

func init() {
	if val := os.Getenv("BLESERIAL_DEVICE"); val != "" {
		defaultConfig.Serial.Device = val
	}
	if val := os.Getenv("BLESERIAL_DIRECTION"); val != "" {
		defaultConfig.Direction = val
	}
	if val := os.Getenv("BLESERIAL_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("BLESERIAL_ID"); val != "" {
		defaultConfig.ID = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Gateway ID, machine ID if empty.")
	flag.StringVar(&defaultConfig.Serial.Device, "device", defaultConfig.Serial.Device, "Serial device.")
	flag.IntVar(&defaultConfig.Serial.BaudRate, "baud", defaultConfig.Serial.BaudRate, "Serial baud rate.")
	flag.IntVar(&defaultConfig.Serial.DataBits, "data-bits", defaultConfig.Serial.DataBits, "Serial data bits.")
	flag.StringVar(&defaultConfig.Serial.Parity, "parity", defaultConfig.Serial.Parity, "Serial parity: none, odd, even, mark, space.")
	flag.StringVar(&defaultConfig.Serial.StopBits, "stop-bits", defaultConfig.Serial.StopBits, "Serial stop bits: 1, 1.5, 2.")
	flag.StringVar(&defaultConfig.Direction, "direction", defaultConfig.Direction, "Direction line: none, rts, gpio:<pin>.")
	flag.BoolVar(&defaultConfig.DirectionActiveLow, "direction-active-low", defaultConfig.DirectionActiveLow, "Direction line is low for transmit.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Reply deadline.")
	flag.DurationVar(&defaultConfig.SettleGap, "settle-gap", defaultConfig.SettleGap, "Silence ending a reply, 0 for a single read.")
	flag.BoolVar(&defaultConfig.BLE, "ble", defaultConfig.BLE, "Advertise the BLE UART service.")
	flag.StringVar(&defaultConfig.BLEName, "ble-name", defaultConfig.BLEName, "BLE local name.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Websocket listen address.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// GatewayID returns ID or the machine ID.
func (c *Config) GatewayID() (string, error) {
	if c.ID != "" {
		return c.ID, nil
	}
	return machineid.ProtectedID("bleserial")
}
