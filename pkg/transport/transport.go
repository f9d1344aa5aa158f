// Package transport provides a uniform byte-stream interface over the
// gateway's supported byte sources: a serial TTY, a Bluetooth RFCOMM
// connection (client or server), a TCP connection or listener, and a
// pre-recorded replay file.
//
// Concrete Bluetooth and serial libraries are treated as external
// collaborators: this package wraps them behind Transport and never
// otherwise depends on their specifics.
package transport

import "io"

// ReadChunk is the read size the serial, Bluetooth and TCP transports use,
// matching spec §4.2's "read() returns up to 1024 bytes". Replay returns
// one trace line per Read instead.
const ReadChunk = 1024

// errEOF is returned by transports built on raw file descriptors (where a
// zero-length read signals peer close) so callers see the same io.EOF a
// net.Conn or os.File would return.
var errEOF = io.EOF

// Transport is a uniform byte stream: read, write, close. Read returns
// io.EOF (with zero bytes) when the peer has closed the stream, matching
// Go's io.Reader convention rather than the original's "empty bytes means
// EOF" — both signal the same condition to the caller.
type Transport interface {
	io.Closer
	// Read returns up to ReadChunk bytes (Replay: one trace line). It blocks until data, EOF, or an
	// error is available; the gateway always calls it from a dedicated
	// per-transport goroutine (see pkg/gateway).
	Read() ([]byte, error)
	// Write sends data verbatim, including any terminator bytes the caller
	// appended.
	Write(data []byte) error
	// String names the transport for logging, mirroring the original's
	// __str__ overrides (device path, peer address, file name).
	String() string
}
