package gateway

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ckumpe/robot-inventor-tools/pkg/trace"
)

// fakeTransport is an in-memory transport.Transport used to drive Loop in
// tests without real sockets or serial ports.
type fakeTransport struct {
	mu       sync.Mutex
	toRead   [][]byte
	readErr  error
	writes   [][]byte
	writeErr error
	closed   bool
	name     string
}

func newFakeTransport(name string) *fakeTransport {
	return &fakeTransport{name: name}
}

func (f *fakeTransport) push(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toRead = append(f.toRead, data)
}

func (f *fakeTransport) Read() ([]byte, error) {
	for {
		f.mu.Lock()
		if len(f.toRead) > 0 {
			data := f.toRead[0]
			f.toRead = f.toRead[1:]
			f.mu.Unlock()
			return data, nil
		}
		if f.readErr != nil {
			err := f.readErr
			f.mu.Unlock()
			return nil, err
		}
		f.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
}

func (f *fakeTransport) Write(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	cp := append([]byte{}, data...)
	f.writes = append(f.writes, cp)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) String() string { return f.name }

func (f *fakeTransport) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeTransport) lastWrite() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return nil
	}
	return f.writes[len(f.writes)-1]
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTransport) failReadsWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

func waitUntil(t *testing.T, deadline time.Duration, cond func() bool) {
	t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	if !cond() {
		t.Fatal("condition not met before deadline")
	}
}

// scenario 1: hub emits a response line, one client connected, client
// receives the identical bytes, trace log records the inbound line.
func TestLoopScenario1RelayToSingleClient(t *testing.T) {
	hub := newFakeTransport("hub")
	client := newFakeTransport("client1")
	tr := &recordingTrace{}

	loop := NewLoop(hub, nil, tr, nil)
	go loop.Run()

	loop.events <- event{kind: eventClientAccepted, client: NewClientConn(client)}
	waitUntil(t, time.Second, func() bool { return loop.Registry.Len() == 1 })

	hub.push([]byte(`{"i":"abc","r":42}` + "\r"))

	waitUntil(t, time.Second, func() bool { return client.writeCount() == 1 })
	if got := string(client.lastWrite()); got != `{"i":"abc","r":42}`+"\r" {
		t.Fatalf("client got %q", got)
	}

	waitUntil(t, time.Second, func() bool { return len(tr.inbound) == 1 })
	if string(tr.inbound[0]) != `{"i":"abc","r":42}` {
		t.Fatalf("trace inbound %q", tr.inbound[0])
	}
}

// scenario 2: battery notification updates session state and produces no
// client output.
func TestLoopScenario2BatteryUpdatesStateOnly(t *testing.T) {
	hub := newFakeTransport("hub")
	loop := NewLoop(hub, nil, trace.NewNoop(), nil)
	go loop.Run()

	hub.push([]byte(`{"m":2,"p":[7600,83,1]}` + "\r"))

	waitUntil(t, time.Second, func() bool { return loop.Session.Charged == 83 })
	if loop.Session.Charging != 1 {
		t.Fatalf("expected charging=1, got %d", loop.Session.Charging)
	}
}

// scenario 3: malformed JSON does not abort the session; a subsequent line
// is still processed.
func TestLoopScenario3MalformedJSONDoesNotAbort(t *testing.T) {
	hub := newFakeTransport("hub")
	loop := NewLoop(hub, nil, trace.NewNoop(), nil)
	go loop.Run()

	hub.push([]byte("not json at all\r\n"))
	hub.push([]byte(`{"m":2,"p":[7600,50,0]}` + "\r"))

	waitUntil(t, time.Second, func() bool { return loop.Session.Charged == 50 })
}

// scenario 5 / invariant 3: two clients connected, one client's write
// fails, a hub line is relayed; the healthy client receives it, the
// failing client is closed and evicted from the registry.
func TestLoopScenario5EvictsFailingClientOnly(t *testing.T) {
	hub := newFakeTransport("hub")
	good := newFakeTransport("good")
	bad := newFakeTransport("bad")
	bad.writeErr = errors.New("broken pipe")

	loop := NewLoop(hub, nil, trace.NewNoop(), nil)
	go loop.Run()

	loop.events <- event{kind: eventClientAccepted, client: NewClientConn(good)}
	loop.events <- event{kind: eventClientAccepted, client: NewClientConn(bad)}
	waitUntil(t, time.Second, func() bool { return loop.Registry.Len() == 2 })

	hub.push([]byte(`{"i":"x","r":1}` + "\r"))

	waitUntil(t, time.Second, func() bool { return good.writeCount() == 1 })
	waitUntil(t, time.Second, func() bool { return bad.isClosed() })
	waitUntil(t, time.Second, func() bool { return loop.Registry.Len() == 1 })

	if loop.Registry.Get("") != nil {
		t.Fatal("unexpected empty-id lookup hit")
	}
}

func TestLoopHubReadFailureIsFatal(t *testing.T) {
	hub := newFakeTransport("hub")
	loop := NewLoop(hub, nil, trace.NewNoop(), nil)

	done := make(chan error, 1)
	go func() { done <- loop.Run() }()

	hub.failReadsWith(io.EOF)

	select {
	case err := <-done:
		if err != io.EOF {
			t.Fatalf("expected io.EOF, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not terminate on hub read failure")
	}
	if !hub.isClosed() {
		t.Fatal("expected hub to be closed on teardown")
	}
}

type recordingTrace struct {
	mu       sync.Mutex
	inbound  [][]byte
	outbound [][]byte
}

func (r *recordingTrace) Inbound(line []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inbound = append(r.inbound, append([]byte{}, line...))
}

func (r *recordingTrace) Outbound(line []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outbound = append(r.outbound, append([]byte{}, line...))
}

func (r *recordingTrace) Close() error { return nil }
