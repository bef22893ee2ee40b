package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/bleserial/pkg/framework"
	"github.com/robotalks/bleserial/pkg/gateway"
	"github.com/robotalks/bleserial/pkg/wire/serial"
)

var listPorts bool

func init() {
	gateway.SetupFlags()
	flag.BoolVar(&listPorts, "list-ports", listPorts, "List serial ports and exit.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if listPorts {
		ports, err := serial.Ports()
		if err != nil {
			glog.Exit(err)
		}
		for _, name := range ports {
			fmt.Println(name)
		}
		return
	}

	g := gateway.NewConfig().MustNewGateway()
	glog.Infof("gateway %s on %s", g.ID, gateway.Default().Serial.Device)
	if err := fx.NewRunner().HandleSignals().Go(g).Wait(); err != nil {
		glog.Errorf("gateway stopped: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}
