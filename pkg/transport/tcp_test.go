package transport

import (
	"strconv"
	"testing"
	"time"
)

func TestTCPListenerAcceptRoundTrip(t *testing.T) {
	ln, err := NewTCPListener(0)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	acceptCh := make(chan *TCPConn, 1)
	errCh := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}
		acceptCh <- conn
	}()

	client, err := NewTCPClient("localhost:" + strconv.Itoa(ln.Port()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	var server *TCPConn
	select {
	case server = <-acceptCh:
	case err := <-errCh:
		t.Fatalf("accept: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for accept")
	}
	defer server.Close()

	if err := client.Write([]byte("hello\r")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := server.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello\r" {
		t.Fatalf("got %q", got)
	}
}

func TestTCPListenerMultipleClients(t *testing.T) {
	ln, err := NewTCPListener(0)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	const n = 3
	accepted := make(chan struct{}, n)
	go func() {
		for i := 0; i < n; i++ {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- struct{}{}
			conn.Close()
		}
	}()

	clients := make([]*TCPConn, n)
	for i := 0; i < n; i++ {
		c, err := NewTCPClient("localhost:" + strconv.Itoa(ln.Port()))
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		clients[i] = c
	}
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()

	for i := 0; i < n; i++ {
		select {
		case <-accepted:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for accept %d", i)
		}
	}
}

