// Package line implements the CR/LF tolerant line framer used to turn a raw
// byte stream (serial, Bluetooth RFCOMM, TCP, or a replay file) into the
// logical lines the rest of the gateway operates on.
//
// A line is a byte sequence free of CR and LF, followed by a terminator: a
// maximal run of CR and/or LF bytes. Runs are folded into a single
// terminator so that "\r\n", "\n\r", "\r\r" and "\n\n" are all treated as one
// line break, and the exact bytes of the run are preserved so a line can be
// relayed with the framing its producer chose.
package line

// Line is one framed message: the payload with no terminator bytes, and the
// exact terminator run that followed it.
type Line struct {
	Payload    []byte
	Terminator []byte
}

// Bytes returns the line as it appeared on the wire (payload + terminator).
func (l Line) Bytes() []byte {
	out := make([]byte, 0, len(l.Payload)+len(l.Terminator))
	out = append(out, l.Payload...)
	out = append(out, l.Terminator...)
	return out
}

func isTerminatorByte(b byte) bool {
	return b == '\r' || b == '\n'
}

// Framer buffers bytes across reads and yields complete lines as they
// become available. It has no maximum line length; callers that read from
// untrusted or unbounded sources should bound Feed's input size themselves.
type Framer struct {
	buf []byte
}

// NewFramer returns an empty framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends newly read bytes and returns every complete line now
// extractable from the buffer, in order. An incomplete trailing payload (no
// terminator seen yet) is retained for the next call. Back-to-back
// terminator bytes present in the buffer are folded into one run, so no
// empty payload is emitted between them. A run that is split across two
// Feed calls is not joined: the first call ends its line at the end of the
// buffer, and the second call emits a line with an empty payload carrying
// the rest of the run.
func (f *Framer) Feed(data []byte) []Line {
	if len(data) > 0 {
		f.buf = append(f.buf, data...)
	}

	var lines []Line
	for {
		pos := -1
		for i, b := range f.buf {
			if isTerminatorByte(b) {
				pos = i
				break
			}
		}
		if pos == -1 {
			return lines
		}

		end := pos + 1
		for end < len(f.buf) && isTerminatorByte(f.buf[end]) {
			end++
		}

		payload := f.buf[:pos]
		terminator := f.buf[pos:end]

		out := Line{
			Payload:    append([]byte(nil), payload...),
			Terminator: append([]byte(nil), terminator...),
		}
		f.buf = f.buf[end:]
		lines = append(lines, out)
	}
}

// Pending returns the bytes currently buffered without a terminator yet.
func (f *Framer) Pending() []byte {
	return append([]byte(nil), f.buf...)
}
