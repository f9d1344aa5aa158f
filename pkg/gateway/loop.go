package gateway

import (
	"fmt"
	"io"
	"sync"

	"github.com/ckumpe/robot-inventor-tools/pkg/line"
	"github.com/ckumpe/robot-inventor-tools/pkg/log"
	"github.com/ckumpe/robot-inventor-tools/pkg/trace"
	"github.com/ckumpe/robot-inventor-tools/pkg/transport"
)

// Acceptor wraps a listener-like source of new client transports. Both
// transport.TCPListener and transport.BluetoothServer satisfy this shape
// once adapted; see cmd/gateway for the adapter closures.
type Acceptor struct {
	Name   string
	Accept func() (transport.Transport, error)
	Close  func() error
}

// Loop is the event loop described in spec §4.7, adapted to the
// goroutine/channel idiom recorded in SPEC_FULL.md §5: one reader
// goroutine per transport funnels line/accept events into a single
// channel; Run is the only goroutine that classifies messages, mutates
// the registry, or writes to any transport.
type Loop struct {
	Hub       transport.Transport
	Acceptors []Acceptor
	Trace     trace.Logger
	Session   *HubSession
	Renderer  *Renderer
	Registry  *Registry

	logger *log.Logger

	events chan event
	wg     sync.WaitGroup
}

// NewLoop builds a Loop ready to Run. logger may be nil, in which case a
// service logger named "gateway" is created.
func NewLoop(hub transport.Transport, acceptors []Acceptor, tr trace.Logger, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.ForService("gateway")
	}
	renderer := NewRenderer()
	return &Loop{
		Hub:       hub,
		Acceptors: acceptors,
		Trace:     tr,
		Session:   NewHubSession(renderer),
		Renderer:  renderer,
		Registry:  NewRegistry(),
		logger:    logger,
		events:    make(chan event, 64),
	}
}

// Run drives the loop until the hub transport fails or is closed, per
// spec §5's "terminates only on fatal hub error or external signal."
// Every source is closed on exit via the scoped teardown below.
func (l *Loop) Run() error {
	l.wg.Add(1)
	go l.readHub()

	for _, a := range l.Acceptors {
		l.wg.Add(1)
		go l.runAcceptor(a)
	}

	var fatal error
	for ev := range l.events {
		switch ev.kind {
		case eventHubLine:
			l.handleHubLine(ev.payload, ev.term)
		case eventHubClosed:
			fatal = ev.err
			l.teardown()
			return fatal
		case eventClientAccepted:
			l.Registry.Add(ev.client)
			l.wg.Add(1)
			go l.readClient(ev.client)
		case eventClientLine:
			l.handleClientLine(ev.clientID, ev.payload, ev.term)
		case eventClientClosed:
			if c := l.Registry.Get(ev.clientID); c != nil {
				c.Close()
				l.Registry.Remove(ev.clientID)
			}
		}
	}
	return fatal
}

// handleHubLine implements spec §4.4: trace-log, classify+render, then
// snapshot-then-prune relay to every current client.
func (l *Loop) handleHubLine(payload, term []byte) {
	l.Trace.Inbound(payload)
	if rendered := l.Session.Dispatch(payload); rendered != "" {
		fmt.Print(rendered)
	}

	full := append(append([]byte{}, payload...), term...)
	var failed []*ClientConn
	for _, c := range l.Registry.Snapshot() {
		if err := c.Transport.Write(full); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		c.Close()
		l.Registry.Remove(c.ID)
	}
}

// handleClientLine implements spec §4.5: log as outbound, render a
// REQUEST: line, forward verbatim to the hub.
func (l *Loop) handleClientLine(clientID string, payload, term []byte) {
	l.Trace.Outbound(payload)
	fmt.Println(l.Renderer.Line("REQUEST:", l.Renderer.request, "", string(payload)))

	full := append(append([]byte{}, payload...), term...)
	if err := l.Hub.Write(full); err != nil {
		l.logger.Errorf("write to hub failed: %v", err)
	}
}

func (l *Loop) readHub() {
	defer l.wg.Done()
	framer := line.NewFramer()
	for {
		data, err := l.Hub.Read()
		if err != nil || len(data) == 0 {
			if err == nil {
				err = io.EOF
			}
			l.events <- event{kind: eventHubClosed, err: err}
			return
		}
		for _, ln := range framer.Feed(data) {
			l.events <- event{kind: eventHubLine, payload: ln.Payload, term: ln.Terminator}
		}
	}
}

func (l *Loop) runAcceptor(a Acceptor) {
	defer l.wg.Done()
	for {
		t, err := a.Accept()
		if err != nil {
			return
		}
		client := NewClientConn(t)
		l.events <- event{kind: eventClientAccepted, client: client}
	}
}

func (l *Loop) readClient(c *ClientConn) {
	defer l.wg.Done()
	framer := line.NewFramer()
	for {
		data, err := c.Transport.Read()
		if err != nil || len(data) == 0 {
			l.events <- event{kind: eventClientClosed, clientID: c.ID}
			return
		}
		for _, ln := range framer.Feed(data) {
			l.events <- event{kind: eventClientLine, clientID: c.ID, payload: ln.Payload, term: ln.Terminator}
		}
	}
}

// teardown closes the hub, every acceptor, and every registered client,
// per spec §5's scoped teardown over {hub, listener, clients}.
func (l *Loop) teardown() {
	l.Hub.Close()
	for _, a := range l.Acceptors {
		a.Close()
	}
	for _, c := range l.Registry.Snapshot() {
		c.Close()
		l.Registry.Remove(c.ID)
	}
	if l.Trace != nil {
		l.Trace.Close()
	}
}
