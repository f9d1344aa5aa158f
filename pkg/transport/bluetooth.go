//go:build linux

package transport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SPPServiceUUID is the gateway's Serial Port Profile service UUID, per
// spec §6. NewBluetoothServer does not register an SDP record for it.
const SPPServiceUUID = "94f39d29-7d6d-437d-973b-fba39e49d4ee"

// sppChannel is the fixed RFCOMM channel both client and server use.
const sppChannel = 1

// BluetoothClient is an RFCOMM connection to a peer device address,
// channel 1.
type BluetoothClient struct {
	addr string
	fd   int
}

// NewBluetoothClient connects to a remote Bluetooth device address over
// RFCOMM channel 1.
func NewBluetoothClient(bdaddr string) (*BluetoothClient, error) {
	addr, err := parseBDAddr(bdaddr)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("open rfcomm socket: %w", err)
	}
	sa := &unix.SockaddrRFCOMM{Addr: addr, Channel: sppChannel}
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("connect rfcomm to %s: %w", bdaddr, err)
	}
	return &BluetoothClient{addr: bdaddr, fd: fd}, nil
}

func (b *BluetoothClient) Read() ([]byte, error) {
	buf := make([]byte, ReadChunk)
	n, err := unix.Read(b.fd, buf)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errEOF
	}
	return buf[:n], nil
}

func (b *BluetoothClient) Write(data []byte) error {
	_, err := unix.Write(b.fd, data)
	return err
}

func (b *BluetoothClient) Close() error {
	return unix.Close(b.fd)
}

func (b *BluetoothClient) String() string {
	return b.addr
}

// BluetoothServer listens on RFCOMM channel 1 and accepts exactly one
// client, per spec §4.2. It does not advertise SPPServiceUUID itself: no
// SDP record is registered.
type BluetoothServer struct {
	listenFD int
	accepted bool
}

// NewBluetoothServer binds and listens on RFCOMM channel 1 for a single
// inbound Serial Port Profile connection.
func NewBluetoothServer() (*BluetoothServer, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("open rfcomm socket: %w", err)
	}
	sa := &unix.SockaddrRFCOMM{Channel: sppChannel}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind rfcomm channel %d: %w", sppChannel, err)
	}
	if err := unix.Listen(fd, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen rfcomm: %w", err)
	}
	// No SDP record is registered here; the socket only binds and listens.
	return &BluetoothServer{listenFD: fd}, nil
}

// Accept blocks for the single client connection this server will ever
// receive. Once a client has been accepted, every later call returns an
// error without accepting.
func (s *BluetoothServer) Accept() (*BluetoothClient, error) {
	if s.accepted {
		return nil, fmt.Errorf("accept rfcomm client: server already accepted its single client")
	}
	nfd, sa, err := unix.Accept(s.listenFD)
	if err != nil {
		return nil, fmt.Errorf("accept rfcomm client: %w", err)
	}
	s.accepted = true
	peer := "bluetooth-client"
	if rc, ok := sa.(*unix.SockaddrRFCOMM); ok {
		peer = formatBDAddr(rc.Addr)
	}
	return &BluetoothClient{addr: peer, fd: nfd}, nil
}

func (s *BluetoothServer) Close() error {
	return unix.Close(s.listenFD)
}

func parseBDAddr(bdaddr string) ([6]byte, error) {
	var addr [6]byte
	n, err := fmt.Sscanf(bdaddr, "%02X:%02X:%02X:%02X:%02X:%02X",
		&addr[5], &addr[4], &addr[3], &addr[2], &addr[1], &addr[0])
	if err != nil || n != 6 {
		return addr, fmt.Errorf("invalid bluetooth device address %q", bdaddr)
	}
	return addr, nil
}

func formatBDAddr(addr [6]byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		addr[5], addr[4], addr[3], addr[2], addr[1], addr[0])
}
