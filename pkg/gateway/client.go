package gateway

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ckumpe/robot-inventor-tools/pkg/transport"
)

// ClientConn owns one client transport, mirroring
// original_source/tools/gateway.py's SocketClientConnection. ID replaces
// the original's str(socket) naming so the registry can key on something
// stable even if the transport's String() changes.
type ClientConn struct {
	ID        string
	Transport transport.Transport

	closeOnce sync.Once
	closeErr  error
}

// NewClientConn wraps an accepted transport as a registry member.
func NewClientConn(t transport.Transport) *ClientConn {
	return &ClientConn{
		ID:        uuid.NewString(),
		Transport: t,
	}
}

// Close closes the underlying transport exactly once, satisfying spec §8
// invariant 3 even when both a failed relay write and the client's own
// reader goroutine observe the failure.
func (c *ClientConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.Transport.Close()
	})
	return c.closeErr
}

func (c *ClientConn) String() string {
	return c.Transport.String()
}
