package gateway

import "testing"

func TestRegistryAddRemove(t *testing.T) {
	reg := NewRegistry()
	c := NewClientConn(newFakeTransport("c1"))
	reg.Add(c)
	if reg.Len() != 1 {
		t.Fatalf("expected len 1, got %d", reg.Len())
	}
	reg.Remove(c.ID)
	if reg.Len() != 0 {
		t.Fatalf("expected len 0, got %d", reg.Len())
	}
}

func TestRegistryRemoveAbsentIsNoop(t *testing.T) {
	reg := NewRegistry()
	reg.Remove("nonexistent")
	if reg.Len() != 0 {
		t.Fatalf("expected len 0, got %d", reg.Len())
	}
}

func TestRegistrySnapshotIndependentOfLiveMap(t *testing.T) {
	reg := NewRegistry()
	c1 := NewClientConn(newFakeTransport("c1"))
	c2 := NewClientConn(newFakeTransport("c2"))
	reg.Add(c1)
	reg.Add(c2)

	snap := reg.Snapshot()
	reg.Remove(c1.ID)

	if len(snap) != 2 {
		t.Fatalf("expected snapshot to retain 2 entries, got %d", len(snap))
	}
	if reg.Len() != 1 {
		t.Fatalf("expected live registry to reflect removal, got %d", reg.Len())
	}
}

func TestClientConnCloseIsIdempotent(t *testing.T) {
	ft := newFakeTransport("c1")
	c := NewClientConn(ft)
	if err := c.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
