package sh

import (
	"context"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bleserial/pkg/transport/mqtt"
)

var (
	// DiscoverCmd lists gateways online.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"ls"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			metas, err := s.Discover()
			if err != nil {
				c.Err(err)
				return
			}
			if metas == nil {
				metas = []mqtt.Meta{}
			}
			lines := make([]string, len(metas))
			for n, meta := range metas {
				lines[n] = FormatMeta(meta)
			}
			if len(lines) == 0 {
				lines = append(lines, "No gateways found")
			}
			s.Print(c, metas, strings.Join(lines, "\n"))
		},
	}

	// UseCmd selects a gateway.
	UseCmd = ishell.Cmd{
		Name:    "use",
		Aliases: []string{"u"},
		Help:    "[ID]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 {
				s.Use(c.Args[0])
				return
			}
			metas, err := s.Discover()
			if err != nil {
				c.Err(err)
				return
			}
			switch len(metas) {
			case 0:
				c.Err(fmt.Errorf("no gateway discovered"))
			case 1:
				s.Use(metas[0].ID)
			default:
				if !s.Interactive {
					c.Err(fmt.Errorf("more than 1 gateways discovered in non-interactive mode"))
					return
				}
				items := make([]string, len(metas))
				for n, meta := range metas {
					items[n] = FormatMeta(meta)
				}
				s.Use(metas[c.MultiChoice(items, "Which one to use?")].ID)
			}
		},
	}

	// SendCmd writes a payload to the gateway.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "HEX-BYTES",
		Func: MustUseGateway(func(c *ishell.Context, s *Shell) {
			payload, err := ParsePayload(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			if err = s.Client.Send(s.GatewayID, payload); err != nil {
				c.Err(err)
			}
		}),
	}

	// ClearCmd clears the value of the gateway.
	ClearCmd = ishell.Cmd{
		Name: "clear",
		Help: "",
		Func: MustUseGateway(func(c *ishell.Context, s *Shell) {
			if err := s.Client.Clear(s.GatewayID); err != nil {
				c.Err(err)
			}
		}),
	}

	// ValueCmd prints the value of the gateway.
	ValueCmd = ishell.Cmd{
		Name:    "value",
		Aliases: []string{"v"},
		Help:    "",
		Func: MustUseGateway(func(c *ishell.Context, s *Shell) {
			value, err := s.Client.Value(context.TODO(), s.GatewayID)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, value, FormatPayload(value))
		}),
	}

	// StatusCmd prints transaction outcomes of the gateway as they happen.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: MustUseGateway(func(c *ishell.Context, s *Shell) {
			if s.statusSub != nil {
				return
			}
			s.statusSub = s.Client.WatchStatus(s.GatewayID, func(status string) {
				c.Printf("%s: %s\n", s.GatewayID, status)
			})
		}),
	}
)

// FormatMeta prints gateway meta into friendly string for display.
func FormatMeta(meta mqtt.Meta) string {
	var w strings.Builder
	w.WriteString(meta.ID)
	if meta.Name != "" {
		fmt.Fprintf(&w, ": %s", meta.Name)
	}
	if meta.Device != "" {
		fmt.Fprintf(&w, " (%s)", meta.Device)
	}
	return w.String()
}
