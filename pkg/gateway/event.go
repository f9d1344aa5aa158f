package gateway

// eventKind discriminates the union of things Loop.Run can react to, the
// Go-idiomatic stand-in for spec §4.7's readiness-driven dispatch (see
// SPEC_FULL.md §5).
type eventKind int

const (
	eventHubLine eventKind = iota
	eventHubClosed
	eventClientAccepted
	eventClientLine
	eventClientClosed
)

// event is produced by exactly one per-transport goroutine and consumed
// only by Loop.Run, which is therefore the sole mutator of the client
// registry and the sole writer to any transport.
type event struct {
	kind     eventKind
	clientID string
	payload  []byte
	term     []byte
	client   *ClientConn
	err      error
}
