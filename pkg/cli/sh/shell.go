package sh

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bleserial/pkg/transport/mqtt"
)

// Shell provides ishell backed interactive shell talking to a gateway.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell     *ishell.Shell
	BrokerURL string
	Client    *mqtt.Client
	GatewayID string

	statusSub *mqtt.Subscription
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	brokerURL  = "mqtt://localhost:1883/bleserial/"
	gatewayID  string

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&UseCmd,
		&SendCmd,
		&ClearCmd,
		&ValueCmd,
		&StatusCmd,
	}
)

func init() {
	if val := os.Getenv("BLESERIAL_MQTT_URL"); val != "" {
		brokerURL = val
	}
	if val := os.Getenv("BLESERIAL_ID"); val != "" {
		gatewayID = val
	}
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&brokerURL, "mqtt", brokerURL, "MQTT broker URL.")
	flag.StringVar(&gatewayID, "gw", gatewayID, "Gateway ID.")
}

// New creates a new shell.
func New(brokerURL string) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Shell:       ishell.New(),
		BrokerURL:   brokerURL,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustUseGateway wraps command func requiring a selected gateway.
func MustUseGateway(fn func(c *ishell.Context, s *Shell)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.GatewayID == "" {
			c.Err(fmt.Errorf("no gateway selected"))
			return
		}
		fn(c, s)
	}
}

// ParsePayload parses hex bytes, e.g. "AA 01 02", "aa0102" or "0xAA 0x01".
func ParsePayload(args ...string) ([]byte, error) {
	var w strings.Builder
	for _, arg := range args {
		for _, token := range strings.Fields(arg) {
			token = strings.TrimPrefix(strings.TrimPrefix(token, "0x"), "0X")
			if len(token)%2 != 0 {
				token = "0" + token
			}
			w.WriteString(token)
		}
	}
	return hex.DecodeString(w.String())
}

// FormatPayload formats bytes the way ParsePayload accepts them.
func FormatPayload(payload []byte) string {
	if len(payload) == 0 {
		return "(empty)"
	}
	return fmt.Sprintf("% X", payload)
}

// Connect connects to the broker.
func (s *Shell) Connect() error {
	client, err := mqtt.NewClient(s.BrokerURL)
	if err != nil {
		return err
	}
	if err = client.Connect(); err != nil {
		return err
	}
	s.Client = client
	return nil
}

// Use selects the gateway for following commands.
func (s *Shell) Use(id string) {
	if s.statusSub != nil {
		s.statusSub.Close()
		s.statusSub = nil
	}
	s.GatewayID = id
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", id))
}

// Discover lists gateways online.
func (s *Shell) Discover() ([]mqtt.Meta, error) {
	return s.Client.Discover(context.TODO())
}

// Print prints a value in the configured format.
func (s *Shell) Print(c *ishell.Context, v interface{}, text string) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if err := s.Connect(); err != nil {
		log.Fatalf("connect %s failed: %v", s.BrokerURL, err)
	}
	defer s.Client.Close()
	if gatewayID != "" {
		s.Use(gatewayID)
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(brokerURL).Run(flag.Args()...)
}
