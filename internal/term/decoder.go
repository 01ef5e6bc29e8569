package term

import "unicode/utf8"

// Decoder converts a raw pty byte stream into edits against a Buffer.
// It recognizes the control-sequence subset common shells emit: escape
// and OSC sequences are consumed (clear-screen resets the buffer),
// backspace deletes, a lone carriage return rewrites the current line,
// and everything else is written at the cursor. Decoding is a single
// sequential pass; state carries across chunk boundaries so splitting
// a stream at any byte offset yields the same final buffer. Malformed
// sequences degrade to literal text; decoding never fails.
type Decoder struct {
	buf   *Buffer
	state decodeState

	// seq accumulates an escape sequence in progress, including the
	// introducer, so malformed sequences can be flushed literally.
	seq []byte
	// pendingCR holds a chunk-final carriage return until the next
	// chunk resolves whether it pairs with a line feed.
	pendingCR bool
	// partial holds an incomplete UTF-8 rune from the chunk tail.
	partial []byte

	plain []rune
}

type decodeState int

const (
	stateGround decodeState = iota
	stateEscape
	stateCSI
	stateOSC
	stateOSCEscape
)

// NewDecoder returns a decoder feeding the given buffer.
func NewDecoder(buf *Buffer) *Decoder {
	return &Decoder{buf: buf}
}

// Buffer returns the terminal buffer the decoder mutates.
func (d *Decoder) Buffer() *Buffer {
	return d.buf
}

// Feed decodes one chunk and returns the plain visible text it added:
// printed runes plus a newline per line break. Control and escape
// bytes contribute nothing to the returned text.
func (d *Decoder) Feed(chunk []byte) string {
	d.plain = d.plain[:0]
	data := chunk
	if len(d.partial) > 0 {
		data = append(append([]byte(nil), d.partial...), chunk...)
		d.partial = nil
	}

	i := 0
	for i < len(data) {
		b := data[i]
		switch d.state {
		case stateGround:
			i += d.ground(data, i)
		case stateEscape:
			d.seq = append(d.seq, b)
			switch b {
			case '[':
				d.state = stateCSI
			case ']':
				d.state = stateOSC
			case 'c':
				// RIS: full terminal reset.
				d.buf.reset()
				d.endSequence()
			default:
				// Two-byte sequence, consumed.
				d.endSequence()
			}
			i++
		case stateCSI:
			if b >= 0x40 && b <= 0x7e {
				d.seq = append(d.seq, b)
				d.finishCSI()
				i++
			} else if b >= 0x20 && b < 0x40 {
				d.seq = append(d.seq, b)
				i++
			} else {
				// Not a CSI byte: flush the sequence as literal text and
				// reprocess the offending byte in ground state.
				d.flushSequence()
			}
		case stateOSC:
			switch b {
			case 0x07:
				d.endSequence()
			case 0x1b:
				d.seq = append(d.seq, b)
				d.state = stateOSCEscape
			default:
				d.seq = append(d.seq, b)
			}
			i++
		case stateOSCEscape:
			if b == '\\' {
				d.endSequence()
			} else {
				// Stray escape inside the OSC payload; stay in it.
				d.seq = append(d.seq, b)
				d.state = stateOSC
			}
			i++
		}
	}
	return string(d.plain)
}

// Flush resolves any held carriage return or partial rune at end of
// stream, emitting them as if no further bytes will arrive.
func (d *Decoder) Flush() string {
	d.plain = d.plain[:0]
	if d.pendingCR {
		d.pendingCR = false
		d.buf.carriageReturn()
	}
	if len(d.partial) > 0 {
		for _, b := range d.partial {
			d.writeRune(rune(b))
		}
		d.partial = nil
	}
	return string(d.plain)
}

// ground consumes bytes at data[i:] in ground state and reports how
// many were consumed.
func (d *Decoder) ground(data []byte, i int) int {
	b := data[i]
	if d.pendingCR {
		d.pendingCR = false
		if b == '\n' {
			d.lineBreak()
			return 1
		}
		d.buf.carriageReturn()
		// Fall through to process b normally.
	}
	switch {
	case b == 0x1b:
		d.state = stateEscape
		d.seq = append(d.seq[:0], b)
		return 1
	case b == '\r':
		if i+1 == len(data) {
			d.pendingCR = true
			return 1
		}
		if data[i+1] == '\n' {
			d.lineBreak()
			return 2
		}
		d.buf.carriageReturn()
		return 1
	case b == '\n':
		d.lineBreak()
		return 1
	case b == 0x08 || b == 0x7f:
		d.buf.backspace()
		return 1
	case b < utf8.RuneSelf:
		d.writeRune(rune(b))
		return 1
	}
	if !utf8.FullRune(data[i:]) && len(data)-i < utf8.UTFMax {
		// Incomplete rune at the chunk tail; hold it for the next chunk.
		d.partial = append(d.partial, data[i:]...)
		return len(data) - i
	}
	r, size := utf8.DecodeRune(data[i:])
	if r == utf8.RuneError && size == 1 {
		// Invalid byte: pass it through rather than reject the stream.
		d.writeRune(rune(data[i]))
		return 1
	}
	d.writeRune(r)
	return size
}

func (d *Decoder) writeRune(r rune) {
	d.buf.writeRune(r)
	d.plain = append(d.plain, r)
}

func (d *Decoder) lineBreak() {
	d.buf.lineBreak()
	d.plain = append(d.plain, '\n')
}

// finishCSI interprets a complete CSI sequence. Only clear-entire-
// screen is acted on; everything else is dropped from the stream.
func (d *Decoder) finishCSI() {
	final := d.seq[len(d.seq)-1]
	if final == 'J' {
		params := string(d.seq[2 : len(d.seq)-1])
		if params == "2" || params == "3" {
			d.buf.reset()
		}
	}
	d.endSequence()
}

func (d *Decoder) endSequence() {
	d.seq = d.seq[:0]
	d.state = stateGround
}

// flushSequence writes an aborted escape sequence into the buffer as
// literal text and returns to ground state.
func (d *Decoder) flushSequence() {
	for _, b := range d.seq {
		d.writeRune(rune(b))
	}
	d.endSequence()
}
