// Package websocket exposes the gateway to websocket clients.
//
// Every binary or text message from a client is an inbound write. The
// published value is sent to a client when it connects and to all clients
// whenever it changes.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/bleserial/pkg/framework"
	"github.com/robotalks/bleserial/pkg/halfduplex"
)

// DefaultWriteTimeout bounds sending one value to a client.
const DefaultWriteTimeout = 5 * time.Second

// Server serves websocket clients.
type Server struct {
	Addr         string
	Path         string
	Handler      halfduplex.WriteHandler
	Values       *halfduplex.Publisher
	WriteTimeout time.Duration

	conns map[*client]struct{}
	lock  sync.Mutex
}

// client is a connection with its pending value. A client that reads
// slowly only ever has the latest value pending.
type client struct {
	*websocket.Conn
	values *halfduplex.LatestValue
}

// NewServer creates a Server and starts watching pub.
func NewServer(addr string, h halfduplex.WriteHandler, pub *halfduplex.Publisher) *Server {
	s := &Server{
		Addr:         addr,
		Path:         "/",
		Handler:      h,
		Values:       pub,
		WriteTimeout: DefaultWriteTimeout,
		conns:        make(map[*client]struct{}),
	}
	pub.Watch(s.broadcast)
	return s
}

// Name implements framework.Named.
func (s *Server) Name() string {
	return "websocket"
}

// HTTPHandler returns the websocket handler.
func (s *Server) HTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.Path, websocket.Handler(s.serveConn))
	return mux
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.HTTPHandler()}
	glog.Infof("websocket listening on %s", s.Addr)
	err := fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	if err == http.ErrServerClosed {
		return ctx.Err()
	}
	return err
}

func (s *Server) serveConn(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	c := &client{Conn: conn, values: halfduplex.NewLatestValue()}
	// registering inside Replay orders the initial value before any
	// broadcast the client receives.
	s.Values.Replay(func(value []byte) {
		s.lock.Lock()
		s.conns[c] = struct{}{}
		s.lock.Unlock()
		c.values.Put(value)
	})
	done := make(chan struct{})
	defer func() {
		s.lock.Lock()
		delete(s.conns, c)
		s.lock.Unlock()
		close(done)
		conn.Close()
	}()
	go s.sendValues(c, done)

	glog.V(2).Infof("websocket %s connected", conn.Request().RemoteAddr)
	for {
		var payload []byte
		if err := websocket.Message.Receive(conn, &payload); err != nil {
			glog.V(2).Infof("websocket %s: %v", conn.Request().RemoteAddr, err)
			return
		}
		if err := s.Handler.HandleWrite(payload); err != nil {
			glog.Warningf("websocket %s: %v", conn.Request().RemoteAddr, err)
		}
	}
}

func (s *Server) sendValues(c *client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case value := <-c.values.C():
			if s.WriteTimeout > 0 {
				c.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
			}
			if err := websocket.Message.Send(c.Conn, value); err != nil {
				glog.V(2).Infof("websocket %s: %v", c.Request().RemoteAddr, err)
				// unblocks the receive loop
				c.Close()
				return
			}
		}
	}
}

func (s *Server) broadcast(value []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for c := range s.conns {
		c.values.Put(value)
	}
}
