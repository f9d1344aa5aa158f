// Package rpcclient implements the RPC client process described in spec
// §4.8: it connects to the gateway's TCP port and speaks the same
// line-framed JSON protocol as the hub, with roles swapped, correlating
// requests to responses by a random 4-character id.
//
// Grounded on original_source/tools/spikejsonrpc.py's RPC class.
package rpcclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/ckumpe/robot-inventor-tools/pkg/line"
	"github.com/ckumpe/robot-inventor-tools/pkg/log"
	"github.com/ckumpe/robot-inventor-tools/pkg/message"
	"github.com/ckumpe/robot-inventor-tools/pkg/transport"
)

// receiveTimeout is the per-call timeout spec §5 specifies: "100-second
// receive timeout per call."
const receiveTimeout = 100 * time.Second

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_"

// ErrTimeout is returned when a call exceeds receiveTimeout without a
// matching response. This supplements spec.md's own open question about
// distinguishing timeout from a null result (see SPEC_FULL.md §9): the
// original only prints "Timeout", which this client still does, but it
// also returns a typed error so callers can tell timeout apart from
// success-with-null.
var ErrTimeout = errors.New("rpcclient: timeout waiting for response")

// CallError is a decoded RPC error reply (spec §4.8 step 5: base64 ->
// UTF-8 -> JSON, surfaced as a connection error).
type CallError struct {
	Body any
}

func (e *CallError) Error() string {
	return fmt.Sprintf("rpc error: %v", e.Body)
}

type conn interface {
	transport.Transport
	SetReadDeadline(t time.Time) error
}

// Client is a connected RPC session.
type Client struct {
	conn    conn
	framer  *line.Framer
	pending []line.Line
	logger  *log.Logger
}

// Dial connects to the gateway's TCP port at addr (e.g. "localhost:8888").
func Dial(addr string) (*Client, error) {
	c, err := transport.NewTCPClient(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:   c,
		framer: line.NewFramer(),
		logger: log.ForService("rpcclient"),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func randomID() string {
	b := make([]byte, 4)
	for i := range b {
		b[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return string(b)
}

// readLine returns the next framed line, blocking (subject to deadline) for
// more data as needed. A zero-value deadline means no deadline (blocks
// forever); a past deadline behaves like a non-blocking poll of whatever
// is already buffered.
func (c *Client) readLine(deadline time.Time) (line.Line, error) {
	for {
		if len(c.pending) > 0 {
			ln := c.pending[0]
			c.pending = c.pending[1:]
			return ln, nil
		}
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return line.Line{}, err
		}
		data, err := c.conn.Read()
		if err != nil {
			return line.Line{}, err
		}
		c.pending = append(c.pending, c.framer.Feed(data)...)
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// drainNotifications discards any unsolicited messages already buffered,
// matching spec §4.8 step 1: "Drains any buffered unsolicited
// notifications with zero timeout" before sending a new request.
func (c *Client) drainNotifications() {
	for {
		_, err := c.readLine(time.Now())
		if err != nil {
			return
		}
	}
}

// SendMessage implements spec §4.8's per-call procedure: drain, generate
// an id, send {m,p,i}\r, and wait for the matching response.
func (c *Client) SendMessage(method string, params any) (json.RawMessage, error) {
	c.drainNotifications()

	id := randomID()
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(map[string]any{"m": method, "p": params, "i": id})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	c.logger.Debugf("sending: %s", body)

	if err := c.conn.Write(append(body, '\r')); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	return c.recvResponse(id)
}

// recvResponse implements invariant 4: returns r from the unique message
// whose i equals id; intermediate messages with other ids are logged and
// dropped.
func (c *Client) recvResponse(id string) (json.RawMessage, error) {
	deadline := time.Now().Add(receiveTimeout)
	for {
		ln, err := c.readLine(deadline)
		if err != nil {
			if isTimeout(err) {
				fmt.Println("Timeout")
				return nil, ErrTimeout
			}
			return nil, err
		}

		msg, perr := message.Parse(ln.Payload)
		if perr != nil {
			c.logger.Debugf("cannot parse JSON: %s", ln.Payload)
			continue
		}
		if msg.ID != id {
			c.logger.Debugf("while waiting for response: %s", ln.Payload)
			continue
		}

		c.logger.Debugf("response: %s", ln.Payload)
		if msg.Kind == message.KindError {
			body, derr := message.DecodeError(msg.ErrorB64)
			if derr != nil {
				return nil, fmt.Errorf("decode error payload: %w", derr)
			}
			return nil, &CallError{Body: body}
		}
		return msg.Result, nil
	}
}
