package term

// Buffer is the decoded terminal state: ordered display lines plus a
// cursor. The cursor column never exceeds the current line length.
// Mutated only by the Decoder that owns it.
type Buffer struct {
	lines    [][]rune
	row      int
	col      int
	maxLines int

	dirtyFrom int
	didReset  bool
}

// DefaultMaxLines bounds scrollback retained in the buffer.
const DefaultMaxLines = 5000

// NewBuffer returns an empty buffer with the cursor at (0,0).
// maxLines <= 0 selects DefaultMaxLines.
func NewBuffer(maxLines int) *Buffer {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Buffer{
		lines:     [][]rune{{}},
		maxLines:  maxLines,
		dirtyFrom: -1,
	}
}

// Lines returns a copy of the display lines.
func (b *Buffer) Lines() []string {
	lines := make([]string, len(b.lines))
	for i, line := range b.lines {
		lines[i] = string(line)
	}
	return lines
}

// Cursor returns the cursor position.
func (b *Buffer) Cursor() (row, col int) {
	return b.row, b.col
}

// writeRune places r at the cursor, overwriting any rune already
// there, and advances the cursor.
func (b *Buffer) writeRune(r rune) {
	line := b.lines[b.row]
	if b.col < len(line) {
		line[b.col] = r
	} else {
		line = append(line, r)
	}
	b.lines[b.row] = line
	b.col++
	b.markDirty(b.row)
}

// lineBreak moves the cursor to the start of the next line, growing
// the buffer when the cursor is on the last line.
func (b *Buffer) lineBreak() {
	b.row++
	b.col = 0
	if b.row == len(b.lines) {
		b.lines = append(b.lines, []rune{})
	}
	b.markDirty(b.row)
	b.trim()
}

// carriageReturn repositions the cursor to line start so subsequent
// runes overwrite the line in place.
func (b *Buffer) carriageReturn() {
	b.col = 0
}

// backspace deletes the rune immediately before the cursor. No-op at
// line start.
func (b *Buffer) backspace() {
	if b.col == 0 {
		return
	}
	line := b.lines[b.row]
	line = append(line[:b.col-1], line[b.col:]...)
	b.lines[b.row] = line
	b.col--
	b.markDirty(b.row)
}

// reset empties the buffer and homes the cursor, recording a reset for
// subscribers.
func (b *Buffer) reset() {
	b.lines = [][]rune{{}}
	b.row = 0
	b.col = 0
	b.didReset = true
	b.dirtyFrom = 0
}

func (b *Buffer) markDirty(row int) {
	if b.dirtyFrom < 0 || row < b.dirtyFrom {
		b.dirtyFrom = row
	}
}

// trim drops the oldest lines once the buffer exceeds its cap, keeping
// half the cap so trims stay infrequent. A trim forces a full redraw.
func (b *Buffer) trim() {
	if b.maxLines <= 0 || len(b.lines) <= b.maxLines {
		return
	}
	retain := b.maxLines / 2
	if retain < 1 {
		retain = 1
	}
	drop := len(b.lines) - retain
	b.lines = b.lines[drop:]
	b.row -= drop
	if b.row < 0 {
		b.row = 0
	}
	b.dirtyFrom = 0
}

// Delta describes buffer changes since the previous TakeDelta call.
type Delta struct {
	// Reset reports that a clear-screen occurred within the batch.
	Reset bool
	// FromRow is the buffer index of Lines[0].
	FromRow int
	// Lines are the display lines from FromRow to the end of the buffer.
	Lines     []string
	CursorRow int
	CursorCol int
}

// TakeDelta returns the pending change description and clears the
// dirty state. ok is false when nothing changed.
func (b *Buffer) TakeDelta() (delta Delta, ok bool) {
	if b.dirtyFrom < 0 && !b.didReset {
		return Delta{}, false
	}
	from := b.dirtyFrom
	if from < 0 || from > len(b.lines) {
		from = 0
	}
	lines := make([]string, 0, len(b.lines)-from)
	for _, line := range b.lines[from:] {
		lines = append(lines, string(line))
	}
	delta = Delta{
		Reset:     b.didReset,
		FromRow:   from,
		Lines:     lines,
		CursorRow: b.row,
		CursorCol: b.col,
	}
	b.dirtyFrom = -1
	b.didReset = false
	return delta, true
}
