package transport

import (
	"fmt"

	"go.bug.st/serial"
)

// defaultBaudRate matches the implementation-default baud spec §4.2 allows;
// the hub firmware auto-negotiates so this is a conservative default that
// matches how other pack consumers of go.bug.st/serial configure their TTY.
const defaultBaudRate = 115200

// Serial opens a TTY as a hub transport.
type Serial struct {
	path string
	port serial.Port
}

// NewSerial opens the TTY at path.
func NewSerial(path string) (*Serial, error) {
	port, err := serial.Open(path, &serial.Mode{BaudRate: defaultBaudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return &Serial{path: path, port: port}, nil
}

func (s *Serial) Read() ([]byte, error) {
	buf := make([]byte, ReadChunk)
	n, err := s.port.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (s *Serial) Write(data []byte) error {
	_, err := s.port.Write(data)
	return err
}

func (s *Serial) Close() error {
	return s.port.Close()
}

func (s *Serial) String() string {
	return s.path
}
