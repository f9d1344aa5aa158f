package gateway

import (
	"strings"
	"testing"
)

func TestHubDispatchResponse(t *testing.T) {
	h := NewHubSession(NewRenderer())
	out := h.Dispatch([]byte(`{"i":"abc","r":42}`))
	if !strings.Contains(out, "RESPONSE:") || !strings.Contains(out, "abc") {
		t.Fatalf("unexpected response render: %q", out)
	}
}

func TestHubDispatchUserProgramPrintOutput(t *testing.T) {
	h := NewHubSession(NewRenderer())
	out := h.Dispatch([]byte(`{"i":"z9","m":"userProgram.print","p":{"value":"aGVsbG8="}}`))
	if !strings.Contains(out, "OUTPUT:") || !strings.Contains(out, "hello") {
		t.Fatalf("unexpected output render: %q", out)
	}
}

func TestHubDispatchMalformedJSON(t *testing.T) {
	h := NewHubSession(NewRenderer())
	out := h.Dispatch([]byte("not json at all"))
	if !strings.Contains(out, "JSON ERROR:") {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestHubDispatchBatteryUpdatesStateSilently(t *testing.T) {
	h := NewHubSession(NewRenderer())
	out := h.Dispatch([]byte(`{"m":2,"p":[7600,91,0]}`))
	if out != "" {
		t.Fatalf("expected no console output for battery, got %q", out)
	}
	if h.Charged != 91 || h.Charging != 0 {
		t.Fatalf("unexpected session state: %+v", h)
	}
}

func TestHubDispatchUnknownShape(t *testing.T) {
	h := NewHubSession(NewRenderer())
	out := h.Dispatch([]byte(`{"foo":"bar"}`))
	if !strings.Contains(out, "UNKNOWN:") {
		t.Fatalf("unexpected render: %q", out)
	}
}
