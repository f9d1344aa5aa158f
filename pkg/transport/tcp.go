package transport

import (
	"fmt"
	"net"
	"time"
)

// TCPListener accepts any number of client connections on localhost, per
// spec §4.2's client transport.
type TCPListener struct {
	ln   net.Listener
	port int
}

// NewTCPListener binds localhost:port. Port 0 lets the OS choose.
func NewTCPListener(port int) (*TCPListener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", port, err)
	}
	return &TCPListener{ln: ln, port: port}, nil
}

// Port returns the bound port, useful when NewTCPListener was called with 0.
func (l *TCPListener) Port() int {
	if tcpAddr, ok := l.ln.Addr().(*net.TCPAddr); ok {
		return tcpAddr.Port
	}
	return l.port
}

// Accept blocks for the next inbound client connection.
func (l *TCPListener) Accept() (*TCPConn, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return &TCPConn{conn: conn}, nil
}

// Close stops accepting new clients. Already-accepted connections are
// unaffected.
func (l *TCPListener) Close() error {
	return l.ln.Close()
}

// TCPConn is a Transport backed by a single accepted TCP connection.
type TCPConn struct {
	conn net.Conn
}

// NewTCPClient dials a TCP peer, used by pkg/rpcclient to reach the
// gateway's client-facing port.
func NewTCPClient(addr string) (*TCPConn, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &TCPConn{conn: conn}, nil
}

func (c *TCPConn) Read() ([]byte, error) {
	buf := make([]byte, ReadChunk)
	n, err := c.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (c *TCPConn) Write(data []byte) error {
	_, err := c.conn.Write(data)
	return err
}

func (c *TCPConn) Close() error {
	return c.conn.Close()
}

func (c *TCPConn) String() string {
	return c.conn.RemoteAddr().String()
}

// SetReadDeadline exposes the underlying connection's deadline control, used
// by pkg/rpcclient to implement its 100s receive timeout and its zero-wait
// drain of unsolicited notifications.
func (c *TCPConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}
