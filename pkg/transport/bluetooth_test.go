//go:build linux

package transport

import "testing"

func TestParseBDAddrRoundTrip(t *testing.T) {
	const addr = "AA:BB:CC:DD:EE:FF"
	parsed, err := parseBDAddr(addr)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := formatBDAddr(parsed); got != addr {
		t.Fatalf("round trip mismatch: got %q want %q", got, addr)
	}
}

func TestParseBDAddrRejectsMalformed(t *testing.T) {
	cases := []string{"", "not-an-address", "AA:BB:CC:DD:EE", "GG:BB:CC:DD:EE:FF"}
	for _, c := range cases {
		if _, err := parseBDAddr(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}
